package tuli

import (
	"context"
	"math/big"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Every mutating operation checks the read-only flag before anything else,
// then validates locally, then estimates, pads and submits.

// UpdateContentURI points a media at a new content location.
func (c *Client) UpdateContentURI(ctx context.Context, mediaID *big.Int, uri string) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("updateTokenURI"); err != nil {
		return nil, err
	}
	if err := domain.ValidateURI(uri); err != nil {
		return nil, err
	}
	call, err := c.media.UpdateTokenURI(mediaID, uri)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// UpdateMetadataURI points a media at a new metadata location.
func (c *Client) UpdateMetadataURI(ctx context.Context, mediaID *big.Int, uri string) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("updateTokenMetadataURI"); err != nil {
		return nil, err
	}
	if err := domain.ValidateURI(uri); err != nil {
		return nil, err
	}
	call, err := c.media.UpdateMetadataURI(mediaID, uri)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// Mint creates a media owned by the signer.
func (c *Client) Mint(ctx context.Context, data domain.MediaData, shares domain.BidShares) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("mint"); err != nil {
		return nil, err
	}
	if err := domain.ValidateMediaData(data); err != nil {
		return nil, err
	}
	if err := domain.ValidateBidShares(shares); err != nil {
		return nil, err
	}
	call, err := c.media.Mint(data, shares)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// MintWithSig mints on behalf of creator using the creator's typed signature.
func (c *Client) MintWithSig(ctx context.Context, creator common.Address, data domain.MediaData, shares domain.BidShares, sig domain.EIP712Signature) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("mintWithSig"); err != nil {
		return nil, err
	}
	if err := domain.ValidateMediaData(data); err != nil {
		return nil, err
	}
	if err := domain.ValidateBidShares(shares); err != nil {
		return nil, err
	}
	call, err := c.media.MintWithSig(creator, data, shares, sig)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) SetAsk(ctx context.Context, mediaID *big.Int, ask domain.Ask) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("setAsk"); err != nil {
		return nil, err
	}
	call, err := c.media.SetAsk(mediaID, ask)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) RemoveAsk(ctx context.Context, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("removeAsk"); err != nil {
		return nil, err
	}
	call, err := c.media.RemoveAsk(mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) SetBid(ctx context.Context, mediaID *big.Int, bid domain.Bid) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("setBid"); err != nil {
		return nil, err
	}
	if err := domain.ValidateBid(bid); err != nil {
		return nil, err
	}
	call, err := c.media.SetBid(mediaID, bid)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// RemoveBid withdraws the signer's bid on mediaID.
func (c *Client) RemoveBid(ctx context.Context, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("removeBid"); err != nil {
		return nil, err
	}
	call, err := c.media.RemoveBid(mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// AcceptBid settles the sale. bid must match the standing bid exactly.
func (c *Client) AcceptBid(ctx context.Context, mediaID *big.Int, bid domain.Bid) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("acceptBid"); err != nil {
		return nil, err
	}
	if err := domain.ValidateBid(bid); err != nil {
		return nil, err
	}
	call, err := c.media.AcceptBid(mediaID, bid)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

// Permit submits an owner's typed approval of spender.
func (c *Client) Permit(ctx context.Context, spender common.Address, mediaID *big.Int, sig domain.EIP712Signature) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("permit"); err != nil {
		return nil, err
	}
	call, err := c.media.Permit(spender, mediaID, sig)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) RevokeApproval(ctx context.Context, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("revokeApproval"); err != nil {
		return nil, err
	}
	call, err := c.media.RevokeApproval(mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) Burn(ctx context.Context, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("burn"); err != nil {
		return nil, err
	}
	call, err := c.media.Burn(mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) Approve(ctx context.Context, to common.Address, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("approve"); err != nil {
		return nil, err
	}
	call, err := c.media.Approve(to, mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) SetApprovalForAll(ctx context.Context, operator common.Address, approved bool) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("setApprovalForAll"); err != nil {
		return nil, err
	}
	call, err := c.media.SetApprovalForAll(operator, approved)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) TransferFrom(ctx context.Context, from, to common.Address, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("transferFrom"); err != nil {
		return nil, err
	}
	call, err := c.media.TransferFrom(from, to, mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}

func (c *Client) SafeTransferFrom(ctx context.Context, from, to common.Address, mediaID *big.Int) (*types.Transaction, error) {
	if err := c.ensureNotReadOnly("safeTransferFrom"); err != nil {
		return nil, err
	}
	call, err := c.media.SafeTransferFrom(from, to, mediaID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, call)
}
