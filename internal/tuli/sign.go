package tuli

import (
	"context"
	"math/big"

	"tuli_go/internal/domain"
	"tuli_go/internal/signer"

	"github.com/ethereum/go-ethereum/common"
)

// SignMintWithSig produces the signer's gasless-mint signature for data,
// using the creator nonce read from the ledger just before signing.
func (c *Client) SignMintWithSig(ctx context.Context, data domain.MediaData, shares domain.BidShares, deadline int64) (domain.EIP712Signature, error) {
	if err := c.ensureNotReadOnly("signMintWithSig"); err != nil {
		return domain.EIP712Signature{}, err
	}
	if err := domain.ValidateMediaData(data); err != nil {
		return domain.EIP712Signature{}, err
	}
	if err := domain.ValidateBidShares(shares); err != nil {
		return domain.EIP712Signature{}, err
	}
	nonce, err := c.media.MintWithSigNonce(ctx, c.auth.Address())
	if err != nil {
		return domain.EIP712Signature{}, err
	}
	return signer.SignMintWithSig(c.auth, data.ContentHash, data.MetadataHash, shares.Creator.Value(), nonce, deadline, c.EIP712Domain())
}

// SignPermit produces the owner's approval of spender for mediaID. The
// nonce is keyed by the current owner and read just before signing.
func (c *Client) SignPermit(ctx context.Context, spender common.Address, mediaID *big.Int, deadline int64) (domain.EIP712Signature, error) {
	if err := c.ensureNotReadOnly("signPermit"); err != nil {
		return domain.EIP712Signature{}, err
	}
	owner, err := c.media.OwnerOf(ctx, mediaID)
	if err != nil {
		return domain.EIP712Signature{}, err
	}
	nonce, err := c.media.PermitNonce(ctx, owner, mediaID)
	if err != nil {
		return domain.EIP712Signature{}, err
	}
	return signer.SignPermit(c.auth, spender, mediaID, nonce, deadline, c.EIP712Domain())
}
