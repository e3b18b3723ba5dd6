package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const mediaDataComponents = `[
	{"name":"tokenURI","type":"string"},
	{"name":"metadataURI","type":"string"},
	{"name":"contentHash","type":"bytes32"},
	{"name":"metadataHash","type":"bytes32"}
]`

const d256Components = `[{"name":"value","type":"uint256"}]`

const bidSharesComponents = `[
	{"name":"prevOwner","type":"tuple","components":` + d256Components + `},
	{"name":"creator","type":"tuple","components":` + d256Components + `},
	{"name":"owner","type":"tuple","components":` + d256Components + `}
]`

const askComponents = `[
	{"name":"amount","type":"uint256"},
	{"name":"currency","type":"address"}
]`

const bidComponents = `[
	{"name":"amount","type":"uint256"},
	{"name":"currency","type":"address"},
	{"name":"bidder","type":"address"},
	{"name":"recipient","type":"address"},
	{"name":"sellOnShare","type":"tuple","components":` + d256Components + `}
]`

const sigComponents = `[
	{"name":"deadline","type":"uint256"},
	{"name":"v","type":"uint8"},
	{"name":"r","type":"bytes32"},
	{"name":"s","type":"bytes32"}
]`

// MediaABI covers the media contract surface the client uses.
const MediaABI = `[
	{"type":"function","name":"mint","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"data","type":"tuple","components":` + mediaDataComponents + `},
		{"name":"bidShares","type":"tuple","components":` + bidSharesComponents + `}]},
	{"type":"function","name":"mintWithSig","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"creator","type":"address"},
		{"name":"data","type":"tuple","components":` + mediaDataComponents + `},
		{"name":"bidShares","type":"tuple","components":` + bidSharesComponents + `},
		{"name":"sig","type":"tuple","components":` + sigComponents + `}]},
	{"type":"function","name":"setAsk","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"ask","type":"tuple","components":` + askComponents + `}]},
	{"type":"function","name":"removeAsk","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"setBid","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"bid","type":"tuple","components":` + bidComponents + `}]},
	{"type":"function","name":"removeBid","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"acceptBid","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"bid","type":"tuple","components":` + bidComponents + `}]},
	{"type":"function","name":"permit","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"spender","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"sig","type":"tuple","components":` + sigComponents + `}]},
	{"type":"function","name":"revokeApproval","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"burn","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"updateTokenURI","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"tokenURI","type":"string"}]},
	{"type":"function","name":"updateTokenMetadataURI","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"metadataURI","type":"string"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"to","type":"address"},
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"operator","type":"address"},
		{"name":"approved","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"from","type":"address"},
		{"name":"to","type":"address"},
		{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"from","type":"address"},
		{"name":"to","type":"address"},
		{"name":"tokenId","type":"uint256"}]},

	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenCreators","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"previousTokenOwners","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenContentHashes","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"tokenMetadataHashes","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"tokenMetadataURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"getApproved","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenByIndex","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"mintWithSigNonces","stateMutability":"view","inputs":[{"name":"creator","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"permitNonces","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"marketContract","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

// MarketABI covers the market reads the client uses.
const MarketABI = `[
	{"type":"function","name":"bidForTokenBidder","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"},
		{"name":"bidder","type":"address"}],
	 "outputs":[{"name":"","type":"tuple","components":` + bidComponents + `}]},
	{"type":"function","name":"currentAskForToken","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"tuple","components":` + askComponents + `}]},
	{"type":"function","name":"bidSharesForToken","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"tuple","components":` + bidSharesComponents + `}]}
]`

var (
	mediaABI  = mustParse(MediaABI)
	marketABI = mustParse(MarketABI)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("chain: invalid ABI: " + err.Error())
	}
	return parsed
}

// ParsedMediaABI returns the parsed media ABI.
func ParsedMediaABI() abi.ABI { return mediaABI }

// ParsedMarketABI returns the parsed market ABI.
func ParsedMarketABI() abi.ABI { return marketABI }
