// Package chaintest provides an in-memory media ledger that satisfies
// chain.Backend. It decodes calldata with the same ABI the client packs
// with, enforces the contract's ownership and share rules, and checks
// typed-message signatures, so client code can be exercised end to end
// without a node.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"tuli_go/internal/chain"
	"tuli_go/internal/domain"
	"tuli_go/internal/signer"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultGasEstimate is what EstimateGas reports for every successful call.
const DefaultGasEstimate uint64 = 100_000

type token struct {
	id        *big.Int
	owner     common.Address
	creator   common.Address
	prevOwner common.Address
	approved  common.Address
	data      chain.MediaDataTuple
	shares    chain.BidSharesTuple
	ask       chain.AskTuple
	bids      map[common.Address]chain.BidTuple
}

// Ledger is a single-process stand-in for the media and market contracts.
type Ledger struct {
	mu sync.Mutex

	chainID       *big.Int
	domainChainID int64
	media         common.Address
	market        common.Address

	tokens       map[string]*token
	order        []string
	nextID       int64
	contentSeen  map[[32]byte]bool
	mintNonces   map[common.Address]*big.Int
	permitNonces map[common.Address]map[string]*big.Int
	operators    map[common.Address]map[common.Address]bool
	txNonces     map[common.Address]uint64

	sent        []*types.Transaction
	gasEstimate uint64
	gasPrice    *big.Int
	now         func() time.Time
	transport   error
}

// NewLedger creates an empty ledger reporting chainID. Signatures are
// checked against a domain with chain id 1 when chainID is the local
// development id 50, and chainID otherwise.
func NewLedger(chainID int64, media, market common.Address) *Ledger {
	dom := chainID
	if chainID == 50 {
		dom = 1
	}
	return &Ledger{
		chainID:       big.NewInt(chainID),
		domainChainID: dom,
		media:         media,
		market:        market,
		tokens:        make(map[string]*token),
		contentSeen:   make(map[[32]byte]bool),
		mintNonces:    make(map[common.Address]*big.Int),
		permitNonces:  make(map[common.Address]map[string]*big.Int),
		operators:     make(map[common.Address]map[common.Address]bool),
		txNonces:      make(map[common.Address]uint64),
		gasEstimate:   DefaultGasEstimate,
		gasPrice:      big.NewInt(1_000_000_000),
		now:           time.Now,
	}
}

// SetTransportError makes every backend method fail with err until reset with nil.
func (l *Ledger) SetTransportError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transport = err
}

// SetClock overrides the clock used for signature deadlines.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Transactions returns every accepted transaction in submission order.
func (l *Ledger) Transactions() []*types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*types.Transaction, len(l.sent))
	copy(out, l.sent)
	return out
}

// LastTransaction returns the most recent accepted transaction, or nil.
func (l *Ledger) LastTransaction() *types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.sent) == 0 {
		return nil
	}
	return l.sent[len(l.sent)-1]
}

// Backend

func (l *Ledger) ChainID(ctx context.Context) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return nil, l.transport
	}
	return new(big.Int).Set(l.chainID), nil
}

func (l *Ledger) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return nil, l.transport
	}
	return l.dispatch(msg.From, msg.To, msg.Data, false)
}

func (l *Ledger) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return 0, l.transport
	}
	if _, err := l.dispatch(msg.From, msg.To, msg.Data, false); err != nil {
		return 0, err
	}
	return l.gasEstimate, nil
}

func (l *Ledger) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return 0, l.transport
	}
	return l.txNonces[account], nil
}

func (l *Ledger) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return nil, l.transport
	}
	return new(big.Int).Set(l.gasPrice), nil
}

func (l *Ledger) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transport != nil {
		return l.transport
	}
	from, err := types.Sender(types.LatestSignerForChainID(l.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.Nonce() != l.txNonces[from] {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), l.txNonces[from])
	}
	if tx.Gas() < l.gasEstimate {
		return errors.New("intrinsic gas too low")
	}
	if _, err := l.dispatch(from, tx.To(), tx.Data(), true); err != nil {
		return err
	}
	l.txNonces[from]++
	l.sent = append(l.sent, tx)
	return nil
}

func revert(reason string) error {
	return fmt.Errorf("execution reverted: %s", reason)
}

func (l *Ledger) dispatch(from common.Address, to *common.Address, data []byte, commit bool) ([]byte, error) {
	if to == nil {
		return nil, errors.New("contract creation is not supported")
	}
	var parsed abi.ABI
	switch *to {
	case l.media:
		parsed = chain.ParsedMediaABI()
	case l.market:
		parsed = chain.ParsedMarketABI()
	default:
		return nil, nil
	}
	if len(data) < 4 {
		return nil, revert("function selector missing")
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, revert("unknown function selector")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, revert("malformed calldata for " + method.Name)
	}

	var out []any
	if *to == l.market {
		out, err = l.marketView(method.Name, args)
	} else {
		out, err = l.mediaCall(from, method.Name, args, commit)
	}
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func bigArg(v any) *big.Int {
	return *abi.ConvertType(v, new(*big.Int)).(**big.Int)
}

func addrArg(v any) common.Address {
	return *abi.ConvertType(v, new(common.Address)).(*common.Address)
}

func key(id *big.Int) string { return id.String() }

func (l *Ledger) existing(id *big.Int) (*token, error) {
	t, ok := l.tokens[key(id)]
	if !ok {
		return nil, revert("Media: token with that id does not exist")
	}
	return t, nil
}

func (l *Ledger) isApprovedOrOwner(from common.Address, t *token) bool {
	return from == t.owner || from == t.approved || l.operators[t.owner][from]
}

func (l *Ledger) marketView(name string, args []any) ([]any, error) {
	switch name {
	case "bidForTokenBidder":
		t, ok := l.tokens[key(bigArg(args[0]))]
		bid := chain.BidTuple{Amount: new(big.Int), SellOnShare: chain.D256{Value: new(big.Int)}}
		if ok {
			if b, found := t.bids[addrArg(args[1])]; found {
				bid = b
			}
		}
		return []any{bid}, nil
	case "currentAskForToken":
		ask := chain.AskTuple{Amount: new(big.Int)}
		if t, ok := l.tokens[key(bigArg(args[0]))]; ok && t.ask.Amount != nil {
			ask = t.ask
		}
		return []any{ask}, nil
	case "bidSharesForToken":
		zero := chain.D256{Value: new(big.Int)}
		shares := chain.BidSharesTuple{PrevOwner: zero, Creator: zero, Owner: zero}
		if t, ok := l.tokens[key(bigArg(args[0]))]; ok {
			shares = t.shares
		}
		return []any{shares}, nil
	}
	return nil, revert("unsupported market function " + name)
}

func (l *Ledger) mediaCall(from common.Address, name string, args []any, commit bool) ([]any, error) {
	switch name {
	// views
	case "balanceOf":
		owner := addrArg(args[0])
		n := int64(0)
		for _, t := range l.tokens {
			if t.owner == owner {
				n++
			}
		}
		return []any{big.NewInt(n)}, nil
	case "ownerOf":
		t, ok := l.tokens[key(bigArg(args[0]))]
		if !ok {
			return nil, revert("ERC721: owner query for nonexistent token")
		}
		return []any{t.owner}, nil
	case "tokenCreators", "previousTokenOwners":
		var addr common.Address
		if t, ok := l.tokens[key(bigArg(args[0]))]; ok {
			addr = t.creator
			if name == "previousTokenOwners" {
				addr = t.prevOwner
			}
		}
		return []any{addr}, nil
	case "tokenContentHashes", "tokenMetadataHashes":
		var h [32]byte
		if t, ok := l.tokens[key(bigArg(args[0]))]; ok {
			h = t.data.ContentHash
			if name == "tokenMetadataHashes" {
				h = t.data.MetadataHash
			}
		}
		return []any{h}, nil
	case "tokenURI", "tokenMetadataURI":
		t, err := l.existing(bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		if name == "tokenURI" {
			return []any{t.data.TokenURI}, nil
		}
		return []any{t.data.MetadataURI}, nil
	case "getApproved":
		t, err := l.existing(bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		return []any{t.approved}, nil
	case "isApprovedForAll":
		return []any{l.operators[addrArg(args[0])][addrArg(args[1])]}, nil
	case "totalSupply":
		return []any{big.NewInt(int64(len(l.order)))}, nil
	case "tokenByIndex":
		i := bigArg(args[0])
		if !i.IsInt64() || i.Int64() >= int64(len(l.order)) {
			return nil, revert("ERC721Enumerable: global index out of bounds")
		}
		return []any{new(big.Int).Set(l.tokens[l.order[i.Int64()]].id)}, nil
	case "tokenOfOwnerByIndex":
		owner, i := addrArg(args[0]), bigArg(args[1])
		var owned []*big.Int
		for _, k := range l.order {
			if l.tokens[k].owner == owner {
				owned = append(owned, l.tokens[k].id)
			}
		}
		if !i.IsInt64() || i.Int64() >= int64(len(owned)) {
			return nil, revert("ERC721Enumerable: owner index out of bounds")
		}
		return []any{new(big.Int).Set(owned[i.Int64()])}, nil
	case "mintWithSigNonces":
		return []any{l.mintNonce(addrArg(args[0]))}, nil
	case "permitNonces":
		return []any{l.permitNonce(addrArg(args[0]), bigArg(args[1]))}, nil
	case "marketContract":
		return []any{l.market}, nil

	// writes
	case "mint":
		data := *abi.ConvertType(args[0], new(chain.MediaDataTuple)).(*chain.MediaDataTuple)
		shares := *abi.ConvertType(args[1], new(chain.BidSharesTuple)).(*chain.BidSharesTuple)
		return nil, l.mint(from, data, shares, commit)
	case "mintWithSig":
		return nil, l.mintWithSig(args, commit)
	case "setAsk":
		t, err := l.ownedOrApproved(from, bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		ask := *abi.ConvertType(args[1], new(chain.AskTuple)).(*chain.AskTuple)
		shares, _ := t.shares.Domain()
		if !domain.SplitsEvenly(ask.Amount, shares) {
			return nil, revert("Market: Ask invalid for share splitting")
		}
		if commit {
			t.ask = ask
		}
		return nil, nil
	case "removeAsk":
		t, err := l.ownedOrApproved(from, bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		if commit {
			t.ask = chain.AskTuple{}
		}
		return nil, nil
	case "setBid":
		return nil, l.setBid(from, args, commit)
	case "removeBid":
		t, err := l.existing(bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		if _, ok := t.bids[from]; !ok {
			return nil, revert("Market: cannot remove bid amount of 0")
		}
		if commit {
			delete(t.bids, from)
		}
		return nil, nil
	case "acceptBid":
		return nil, l.acceptBid(from, args, commit)
	case "permit":
		return nil, l.permit(args, commit)
	case "revokeApproval":
		t, err := l.existing(bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		if from != t.approved {
			return nil, revert("Media: caller not approved address")
		}
		if commit {
			t.approved = common.Address{}
		}
		return nil, nil
	case "burn":
		t, err := l.ownedOrApproved(from, bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		if t.owner != t.creator {
			return nil, revert("Media: owner is not creator of media")
		}
		if commit {
			l.remove(t)
		}
		return nil, nil
	case "updateTokenURI", "updateTokenMetadataURI":
		t, err := l.ownedOrApproved(from, bigArg(args[0]))
		if err != nil {
			return nil, err
		}
		uri := args[1].(string)
		if uri == "" {
			return nil, revert("Media: specified uri must be non-empty")
		}
		if commit {
			if name == "updateTokenURI" {
				t.data.TokenURI = uri
			} else {
				t.data.MetadataURI = uri
			}
		}
		return nil, nil
	case "approve":
		to := addrArg(args[0])
		t, err := l.existing(bigArg(args[1]))
		if err != nil {
			return nil, err
		}
		if from != t.owner && !l.operators[t.owner][from] {
			return nil, revert("ERC721: approve caller is not owner nor approved for all")
		}
		if commit {
			t.approved = to
		}
		return nil, nil
	case "setApprovalForAll":
		operator, approved := addrArg(args[0]), args[1].(bool)
		if operator == from {
			return nil, revert("ERC721: approve to caller")
		}
		if commit {
			if l.operators[from] == nil {
				l.operators[from] = make(map[common.Address]bool)
			}
			l.operators[from][operator] = approved
		}
		return nil, nil
	case "transferFrom", "safeTransferFrom":
		src, dst := addrArg(args[0]), addrArg(args[1])
		t, err := l.ownedOrApproved(from, bigArg(args[2]))
		if err != nil {
			return nil, err
		}
		if t.owner != src {
			return nil, revert("ERC721: transfer of token that is not own")
		}
		if (dst == common.Address{}) {
			return nil, revert("ERC721: transfer to the zero address")
		}
		if commit {
			t.owner = dst
			t.approved = common.Address{}
			t.ask = chain.AskTuple{}
		}
		return nil, nil
	}
	return nil, revert("unsupported media function " + name)
}

func (l *Ledger) ownedOrApproved(from common.Address, id *big.Int) (*token, error) {
	t, err := l.existing(id)
	if err != nil {
		return nil, err
	}
	if !l.isApprovedOrOwner(from, t) {
		return nil, revert("Media: Only approved or owner")
	}
	return t, nil
}

func (l *Ledger) remove(t *token) {
	k := key(t.id)
	delete(l.tokens, k)
	for i, o := range l.order {
		if o == k {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *Ledger) mintNonce(creator common.Address) *big.Int {
	if n, ok := l.mintNonces[creator]; ok {
		return new(big.Int).Set(n)
	}
	return new(big.Int)
}

func (l *Ledger) permitNonce(owner common.Address, id *big.Int) *big.Int {
	if n, ok := l.permitNonces[owner][key(id)]; ok {
		return new(big.Int).Set(n)
	}
	return new(big.Int)
}

func (l *Ledger) mint(creator common.Address, data chain.MediaDataTuple, shares chain.BidSharesTuple, commit bool) error {
	ds, err := shares.Domain()
	if err != nil {
		return revert("Market: Invalid bid shares, must sum to 100")
	}
	if err := domain.ValidateBidShares(ds); err != nil {
		return revert("Market: Invalid bid shares, must sum to 100")
	}
	if (data.ContentHash == [32]byte{}) {
		return revert("Media: content hash must be non-zero")
	}
	if l.contentSeen[data.ContentHash] {
		return revert("Media: a token has already been created with this content hash")
	}
	if data.TokenURI == "" || data.MetadataURI == "" {
		return revert("Media: specified uri must be non-empty")
	}
	if !commit {
		return nil
	}
	id := big.NewInt(l.nextID)
	l.nextID++
	l.tokens[key(id)] = &token{
		id:      id,
		owner:   creator,
		creator: creator,
		data:    data,
		shares:  shares,
		bids:    make(map[common.Address]chain.BidTuple),
	}
	l.order = append(l.order, key(id))
	l.contentSeen[data.ContentHash] = true
	return nil
}

func (l *Ledger) checkDeadline(deadline *big.Int, what string) error {
	if deadline.Sign() != 0 && deadline.Cmp(big.NewInt(l.now().Unix())) < 0 {
		return revert("Media: " + what + " expired")
	}
	return nil
}

func (l *Ledger) mintWithSig(args []any, commit bool) error {
	creator := addrArg(args[0])
	data := *abi.ConvertType(args[1], new(chain.MediaDataTuple)).(*chain.MediaDataTuple)
	shares := *abi.ConvertType(args[2], new(chain.BidSharesTuple)).(*chain.BidSharesTuple)
	sig := *abi.ConvertType(args[3], new(chain.SigTuple)).(*chain.SigTuple)

	if err := l.checkDeadline(sig.Deadline, "mintWithSig"); err != nil {
		return err
	}
	td := signer.MintWithSigTypedData(signer.NewDomain(l.domainChainID, l.media), signer.MintWithSigMessage{
		ContentHash:  data.ContentHash,
		MetadataHash: data.MetadataHash,
		CreatorShare: shares.Creator.Value,
		Nonce:        l.mintNonce(creator),
		Deadline:     sig.Deadline,
	})
	recovered, err := signer.RecoverTypedSigner(td, sig.Domain())
	if err != nil || recovered != creator {
		return revert("Media: Signature invalid")
	}
	if err := l.mint(creator, data, shares, commit); err != nil {
		return err
	}
	if commit {
		l.mintNonces[creator] = new(big.Int).Add(l.mintNonce(creator), big.NewInt(1))
	}
	return nil
}

func (l *Ledger) permit(args []any, commit bool) error {
	spender := addrArg(args[0])
	id := bigArg(args[1])
	sig := *abi.ConvertType(args[2], new(chain.SigTuple)).(*chain.SigTuple)

	t, err := l.existing(id)
	if err != nil {
		return err
	}
	if err := l.checkDeadline(sig.Deadline, "Permit"); err != nil {
		return err
	}
	td := signer.PermitTypedData(signer.NewDomain(l.domainChainID, l.media), signer.PermitMessage{
		Spender:  spender,
		TokenID:  id,
		Nonce:    l.permitNonce(t.owner, id),
		Deadline: sig.Deadline,
	})
	recovered, err := signer.RecoverTypedSigner(td, sig.Domain())
	if err != nil || (recovered != t.owner && !l.operators[t.owner][recovered]) {
		return revert("Media: Signature invalid")
	}
	if commit {
		if l.permitNonces[t.owner] == nil {
			l.permitNonces[t.owner] = make(map[string]*big.Int)
		}
		l.permitNonces[t.owner][key(id)] = new(big.Int).Add(l.permitNonce(t.owner, id), big.NewInt(1))
		t.approved = spender
	}
	return nil
}

func (l *Ledger) validBid(t *token, bid chain.BidTuple) error {
	shares, err := t.shares.Domain()
	if err != nil {
		return revert("Market: Invalid bid shares for token")
	}
	db, err := bid.Domain()
	if err != nil {
		return revert("Market: Sell on fee invalid for share splitting")
	}
	creatorPlusSellOn := new(big.Int).Add(t.shares.Creator.Value, bid.SellOnShare.Value)
	if !domain.ValidSellOnShare(db, shares) || creatorPlusSellOn.Cmp(domain.Hundred.Value()) > 0 {
		return revert("Market: Sell on fee invalid for share splitting")
	}
	if !domain.SplitsEvenly(bid.Amount, shares) {
		return revert("Market: Bid invalid for share splitting")
	}
	return nil
}

func (l *Ledger) setBid(from common.Address, args []any, commit bool) error {
	t, err := l.existing(bigArg(args[0]))
	if err != nil {
		return err
	}
	bid := *abi.ConvertType(args[1], new(chain.BidTuple)).(*chain.BidTuple)
	if bid.Bidder != from {
		return revert("Market: Bidder must be msg sender")
	}
	if (bid.Recipient == common.Address{}) {
		return revert("Market: bid recipient cannot be 0 address")
	}
	if (bid.Currency == common.Address{}) {
		return revert("Market: bid currency cannot be 0 address")
	}
	if err := l.validBid(t, bid); err != nil {
		return err
	}
	if !commit {
		return nil
	}
	t.bids[bid.Bidder] = bid
	// A bid meeting the ask in the same currency settles immediately.
	if t.ask.Amount != nil && t.ask.Amount.Sign() > 0 &&
		t.ask.Currency == bid.Currency && bid.Amount.Cmp(t.ask.Amount) >= 0 {
		l.settle(t, bid)
	}
	return nil
}

func (l *Ledger) acceptBid(from common.Address, args []any, commit bool) error {
	t, err := l.ownedOrApproved(from, bigArg(args[0]))
	if err != nil {
		return err
	}
	expected := *abi.ConvertType(args[1], new(chain.BidTuple)).(*chain.BidTuple)
	stored, ok := t.bids[expected.Bidder]
	if !ok || stored.Amount.Sign() == 0 {
		return revert("Market: cannot accept bid of 0")
	}
	if stored.Amount.Cmp(expected.Amount) != 0 ||
		stored.Currency != expected.Currency ||
		stored.SellOnShare.Value.Cmp(expected.SellOnShare.Value) != 0 ||
		stored.Recipient != expected.Recipient {
		return revert("Market: Unexpected bid found.")
	}
	if err := l.validBid(t, stored); err != nil {
		return err
	}
	if commit {
		l.settle(t, stored)
	}
	return nil
}

// settle transfers the token to the bid recipient and re-splits shares:
// the seller's sell-on share becomes the new previous-owner share.
func (l *Ledger) settle(t *token, bid chain.BidTuple) {
	hundred := domain.Hundred.Value()
	sellOn := new(big.Int).Set(bid.SellOnShare.Value)
	owner := new(big.Int).Sub(hundred, t.shares.Creator.Value)
	owner.Sub(owner, sellOn)

	t.prevOwner = t.owner
	t.owner = bid.Recipient
	t.approved = common.Address{}
	t.ask = chain.AskTuple{}
	t.shares = chain.BidSharesTuple{
		PrevOwner: chain.D256{Value: sellOn},
		Creator:   t.shares.Creator,
		Owner:     chain.D256{Value: owner},
	}
	delete(t.bids, bid.Bidder)
}
