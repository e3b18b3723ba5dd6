package signer

import (
	"fmt"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Protocol identity bound into every typed-message domain.
const (
	ProtocolName    = "Tuli"
	ProtocolVersion = "1"

	MintWithSigType = "MintWithSig"
	PermitType      = "Permit"
)

// Field order and type strings must match the media contract's typehashes.
var (
	domainFields = []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}

	// MintWithSig(bytes32 contentHash,bytes32 metadataHash,uint256 creatorShare,uint256 nonce,uint256 deadline)
	mintWithSigFields = []apitypes.Type{
		{Name: "contentHash", Type: "bytes32"},
		{Name: "metadataHash", Type: "bytes32"},
		{Name: "creatorShare", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	}

	// Permit(address spender,uint256 tokenId,uint256 nonce,uint256 deadline)
	permitFields = []apitypes.Type{
		{Name: "spender", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	}
)

// Domain is the EIP-712 signing domain. ChainID is the protocol's configured
// chain id and may differ from the chain id the network reports.
type Domain struct {
	Name              string
	Version           string
	ChainID           int64
	VerifyingContract common.Address
}

// NewDomain builds the protocol domain for a media contract.
func NewDomain(chainID int64, mediaContract common.Address) Domain {
	return Domain{
		Name:              ProtocolName,
		Version:           ProtocolVersion,
		ChainID:           chainID,
		VerifyingContract: mediaContract,
	}
}

func (d Domain) typed() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              d.Name,
		Version:           d.Version,
		ChainId:           math.NewHexOrDecimal256(d.ChainID),
		VerifyingContract: d.VerifyingContract.Hex(),
	}
}

// MintWithSigMessage is the gasless mint payload.
type MintWithSigMessage struct {
	ContentHash  [32]byte
	MetadataHash [32]byte
	CreatorShare *big.Int // raw Decimal value
	Nonce        *big.Int
	Deadline     *big.Int
}

func (m MintWithSigMessage) toMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"contentHash":  hexutil.Encode(m.ContentHash[:]),
		"metadataHash": hexutil.Encode(m.MetadataHash[:]),
		"creatorShare": bigString(m.CreatorShare),
		"nonce":        bigString(m.Nonce),
		"deadline":     bigString(m.Deadline),
	}
}

// PermitMessage grants spender approval over one token.
type PermitMessage struct {
	Spender  common.Address
	TokenID  *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

func (m PermitMessage) toMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"spender":  m.Spender.Hex(),
		"tokenId":  bigString(m.TokenID),
		"nonce":    bigString(m.Nonce),
		"deadline": bigString(m.Deadline),
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// MintWithSigTypedData assembles the full typed-data document for a gasless mint.
func MintWithSigTypedData(dom Domain, msg MintWithSigMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain":  domainFields,
			MintWithSigType: mintWithSigFields,
		},
		PrimaryType: MintWithSigType,
		Domain:      dom.typed(),
		Message:     msg.toMessage(),
	}
}

// PermitTypedData assembles the full typed-data document for a permit.
func PermitTypedData(dom Domain, msg PermitMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainFields,
			PermitType:     permitFields,
		},
		PrimaryType: PermitType,
		Domain:      dom.typed(),
		Message:     msg.toMessage(),
	}
}

// Digest is keccak256("\x19\x01" || domainSeparator || hashStruct(message)).
func Digest(td apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("typed data hash: %w", err)
	}
	return hash, nil
}

// SignTypedData hashes td, signs it with s and splits the result.
func SignTypedData(s Signer, td apitypes.TypedData, deadline *big.Int) (domain.EIP712Signature, error) {
	hash, err := Digest(td)
	if err != nil {
		return domain.EIP712Signature{}, err
	}
	raw, err := s.SignHash(hash)
	if err != nil {
		return domain.EIP712Signature{}, fmt.Errorf("sign %s: %w", td.PrimaryType, err)
	}
	if len(raw) != crypto.SignatureLength {
		return domain.EIP712Signature{}, fmt.Errorf("sign %s: signature is %d bytes", td.PrimaryType, len(raw))
	}

	sig := domain.EIP712Signature{Deadline: new(big.Int).Set(deadline)}
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	if sig.V < 27 {
		sig.V += 27
	}
	return sig, nil
}

// SignMintWithSig signs a gasless mint. creatorShare is the raw Decimal
// value of the creator's bid share.
func SignMintWithSig(s Signer, contentHash, metadataHash [32]byte, creatorShare, nonce *big.Int, deadline int64, dom Domain) (domain.EIP712Signature, error) {
	dl := big.NewInt(deadline)
	td := MintWithSigTypedData(dom, MintWithSigMessage{
		ContentHash:  contentHash,
		MetadataHash: metadataHash,
		CreatorShare: creatorShare,
		Nonce:        nonce,
		Deadline:     dl,
	})
	return SignTypedData(s, td, dl)
}

// SignPermit signs an approval for spender over tokenID.
func SignPermit(s Signer, spender common.Address, tokenID, nonce *big.Int, deadline int64, dom Domain) (domain.EIP712Signature, error) {
	dl := big.NewInt(deadline)
	td := PermitTypedData(dom, PermitMessage{
		Spender:  spender,
		TokenID:  tokenID,
		Nonce:    nonce,
		Deadline: dl,
	})
	return SignTypedData(s, td, dl)
}

// RecoverTypedSigner returns the address that produced sig over td.
func RecoverTypedSigner(td apitypes.TypedData, sig domain.EIP712Signature) (common.Address, error) {
	hash, err := Digest(td)
	if err != nil {
		return common.Address{}, err
	}
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, fmt.Errorf("recover: invalid v %d", sig.V)
	}
	raw := make([]byte, crypto.SignatureLength)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pub, err := crypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover pubkey: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// TypeString renders the canonical type string of primaryType, e.g.
// "Permit(address spender,uint256 tokenId,uint256 nonce,uint256 deadline)".
func TypeString(td apitypes.TypedData) string {
	return string(td.EncodeType(td.PrimaryType))
}
