package chain

import (
	"context"
	"fmt"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// contract is a bound address plus ABI used for eth_call reads and
// calldata packing.
type contract struct {
	address common.Address
	abi     abi.ABI
	backend Backend
}

func (c *contract) pack(method string, args ...any) (Call, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return Call{}, fmt.Errorf("pack %s: %w", method, err)
	}
	return Call{To: c.address, Method: method, Data: data}, nil
}

func (c *contract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	call, err := c.pack(method, args...)
	if err != nil {
		return nil, err
	}
	to := c.address
	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: call.Data}, nil)
	if err != nil {
		return nil, mapCallError(method, err)
	}
	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return out, nil
}

func (c *contract) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *contract) callAddress(ctx context.Context, method string, args ...any) (common.Address, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *contract) callBytes32(ctx context.Context, method string, args ...any) ([32]byte, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return [32]byte{}, err
	}
	return *abi.ConvertType(out[0], new([32]byte)).(*[32]byte), nil
}

func (c *contract) callString(ctx context.Context, method string, args ...any) (string, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (c *contract) callBool(ctx context.Context, method string, args ...any) (bool, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Media binds the media (token) contract.
type Media struct {
	contract
}

func NewMedia(address common.Address, backend Backend) *Media {
	return &Media{contract{address: address, abi: mediaABI, backend: backend}}
}

func (m *Media) Address() common.Address { return m.address }

// Reads

func (m *Media) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return m.callBig(ctx, "balanceOf", owner)
}

func (m *Media) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return m.callAddress(ctx, "ownerOf", tokenID)
}

func (m *Media) TokenCreator(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return m.callAddress(ctx, "tokenCreators", tokenID)
}

func (m *Media) PreviousTokenOwner(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return m.callAddress(ctx, "previousTokenOwners", tokenID)
}

func (m *Media) ContentHash(ctx context.Context, tokenID *big.Int) ([32]byte, error) {
	return m.callBytes32(ctx, "tokenContentHashes", tokenID)
}

func (m *Media) MetadataHash(ctx context.Context, tokenID *big.Int) ([32]byte, error) {
	return m.callBytes32(ctx, "tokenMetadataHashes", tokenID)
}

func (m *Media) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return m.callString(ctx, "tokenURI", tokenID)
}

func (m *Media) MetadataURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return m.callString(ctx, "tokenMetadataURI", tokenID)
}

func (m *Media) Approved(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return m.callAddress(ctx, "getApproved", tokenID)
}

func (m *Media) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return m.callBool(ctx, "isApprovedForAll", owner, operator)
}

func (m *Media) TotalSupply(ctx context.Context) (*big.Int, error) {
	return m.callBig(ctx, "totalSupply")
}

func (m *Media) TokenByIndex(ctx context.Context, index *big.Int) (*big.Int, error) {
	return m.callBig(ctx, "tokenByIndex", index)
}

func (m *Media) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	return m.callBig(ctx, "tokenOfOwnerByIndex", owner, index)
}

func (m *Media) MintWithSigNonce(ctx context.Context, creator common.Address) (*big.Int, error) {
	return m.callBig(ctx, "mintWithSigNonces", creator)
}

func (m *Media) PermitNonce(ctx context.Context, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	return m.callBig(ctx, "permitNonces", owner, tokenID)
}

func (m *Media) MarketContract(ctx context.Context) (common.Address, error) {
	return m.callAddress(ctx, "marketContract")
}

// Record gathers what content verification needs about one token. The
// existence check comes first so a missing token surfaces as ErrMediaNotFound.
func (m *Media) Record(ctx context.Context, tokenID *big.Int) (domain.MediaRecord, error) {
	if _, err := m.OwnerOf(ctx, tokenID); err != nil {
		return domain.MediaRecord{}, err
	}
	rec := domain.MediaRecord{ID: new(big.Int).Set(tokenID)}
	var err error
	if rec.TokenURI, err = m.TokenURI(ctx, tokenID); err != nil {
		return domain.MediaRecord{}, err
	}
	if rec.MetadataURI, err = m.MetadataURI(ctx, tokenID); err != nil {
		return domain.MediaRecord{}, err
	}
	if rec.ContentHash, err = m.ContentHash(ctx, tokenID); err != nil {
		return domain.MediaRecord{}, err
	}
	if rec.MetadataHash, err = m.MetadataHash(ctx, tokenID); err != nil {
		return domain.MediaRecord{}, err
	}
	return rec, nil
}

// Writes. Each returns packed calldata for a Transactor.

func (m *Media) Mint(data domain.MediaData, shares domain.BidShares) (Call, error) {
	return m.pack("mint", NewMediaDataTuple(data), NewBidSharesTuple(shares))
}

func (m *Media) MintWithSig(creator common.Address, data domain.MediaData, shares domain.BidShares, sig domain.EIP712Signature) (Call, error) {
	return m.pack("mintWithSig", creator, NewMediaDataTuple(data), NewBidSharesTuple(shares), NewSigTuple(sig))
}

func (m *Media) SetAsk(tokenID *big.Int, ask domain.Ask) (Call, error) {
	return m.pack("setAsk", tokenID, NewAskTuple(ask))
}

func (m *Media) RemoveAsk(tokenID *big.Int) (Call, error) {
	return m.pack("removeAsk", tokenID)
}

func (m *Media) SetBid(tokenID *big.Int, bid domain.Bid) (Call, error) {
	return m.pack("setBid", tokenID, NewBidTuple(bid))
}

func (m *Media) RemoveBid(tokenID *big.Int) (Call, error) {
	return m.pack("removeBid", tokenID)
}

func (m *Media) AcceptBid(tokenID *big.Int, bid domain.Bid) (Call, error) {
	return m.pack("acceptBid", tokenID, NewBidTuple(bid))
}

func (m *Media) Permit(spender common.Address, tokenID *big.Int, sig domain.EIP712Signature) (Call, error) {
	return m.pack("permit", spender, tokenID, NewSigTuple(sig))
}

func (m *Media) RevokeApproval(tokenID *big.Int) (Call, error) {
	return m.pack("revokeApproval", tokenID)
}

func (m *Media) Burn(tokenID *big.Int) (Call, error) {
	return m.pack("burn", tokenID)
}

func (m *Media) UpdateTokenURI(tokenID *big.Int, uri string) (Call, error) {
	return m.pack("updateTokenURI", tokenID, uri)
}

func (m *Media) UpdateMetadataURI(tokenID *big.Int, uri string) (Call, error) {
	return m.pack("updateTokenMetadataURI", tokenID, uri)
}

func (m *Media) Approve(to common.Address, tokenID *big.Int) (Call, error) {
	return m.pack("approve", to, tokenID)
}

func (m *Media) SetApprovalForAll(operator common.Address, approved bool) (Call, error) {
	return m.pack("setApprovalForAll", operator, approved)
}

func (m *Media) TransferFrom(from, to common.Address, tokenID *big.Int) (Call, error) {
	return m.pack("transferFrom", from, to, tokenID)
}

func (m *Media) SafeTransferFrom(from, to common.Address, tokenID *big.Int) (Call, error) {
	return m.pack("safeTransferFrom", from, to, tokenID)
}
