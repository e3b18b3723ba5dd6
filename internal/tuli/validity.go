package tuli

import (
	"context"
	"math/big"

	"tuli_go/internal/domain"
)

// IsValidAsk reports whether ask.Amount splits across the media's current
// bid shares with no remainder. A missing media fails with ErrMediaNotFound.
func (c *Client) IsValidAsk(ctx context.Context, mediaID *big.Int, ask domain.Ask) (bool, error) {
	shares, err := c.sharesOf(ctx, mediaID)
	if err != nil {
		return false, err
	}
	return domain.SplitsEvenly(ask.Amount, shares), nil
}

// IsValidBid is IsValidAsk for a bid, and additionally requires the bid's
// sell-on share to fit next to the previous owner's share.
func (c *Client) IsValidBid(ctx context.Context, mediaID *big.Int, bid domain.Bid) (bool, error) {
	shares, err := c.sharesOf(ctx, mediaID)
	if err != nil {
		return false, err
	}
	return domain.SplitsEvenly(bid.Amount, shares) && domain.ValidSellOnShare(bid, shares), nil
}

func (c *Client) sharesOf(ctx context.Context, mediaID *big.Int) (domain.BidShares, error) {
	if _, err := c.media.OwnerOf(ctx, mediaID); err != nil {
		return domain.BidShares{}, err
	}
	return c.market.BidSharesForToken(ctx, mediaID)
}
