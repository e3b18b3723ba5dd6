package infra

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"tuli_go/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

//go:embed addresses.yaml
var defaultAddressBook []byte

// networkNames maps chain ids with an embedded deployment to their names.
// Other networks come in through an address book file.
var networkNames = map[int64]string{
	1: "mainnet",
	4: "rinkeby",
}

// NetworkName returns the deployment name for chainID, if known.
func NetworkName(chainID int64) (string, bool) {
	name, ok := networkNames[chainID]
	return name, ok
}

// Deployment is one network's protocol contract pair.
type Deployment struct {
	Name   string `yaml:"name"`
	Media  string `yaml:"media"`
	Market string `yaml:"market"`
}

// AddressBook maps chain ids to official deployments.
type AddressBook struct {
	Networks map[int64]Deployment `yaml:"networks"`
}

// DefaultAddressBook returns the embedded deployments.
func DefaultAddressBook() *AddressBook {
	book, err := parseAddressBook(defaultAddressBook)
	if err != nil {
		panic("infra: embedded address book is invalid: " + err.Error())
	}
	return book
}

// LoadAddressBook reads an address book file and layers it over the
// embedded defaults. An empty path returns the defaults.
func LoadAddressBook(path string) (*AddressBook, error) {
	book := DefaultAddressBook()
	if path == "" {
		return book, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Field: "network.address_book_path", Err: err}
	}
	extra, err := parseAddressBook(data)
	if err != nil {
		return nil, &domain.ConfigError{Field: "network.address_book_path", Err: err}
	}
	for id, dep := range extra.Networks {
		book.Networks[id] = dep
	}
	return book, nil
}

func parseAddressBook(data []byte) (*AddressBook, error) {
	var book AddressBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse address book: %w", err)
	}
	if book.Networks == nil {
		book.Networks = make(map[int64]Deployment)
	}
	for id, dep := range book.Networks {
		if !common.IsHexAddress(dep.Media) || !common.IsHexAddress(dep.Market) {
			return nil, fmt.Errorf("chain %d: media and market must be valid addresses", id)
		}
		if dep.Name == "" {
			dep.Name, _ = NetworkName(id)
			book.Networks[id] = dep
		}
	}
	return &book, nil
}

// Lookup returns the media and market contracts deployed on chainID.
func (b *AddressBook) Lookup(chainID int64) (media, market common.Address, ok bool) {
	dep, found := b.Networks[chainID]
	if !found {
		return common.Address{}, common.Address{}, false
	}
	return common.HexToAddress(dep.Media), common.HexToAddress(dep.Market), true
}

// ChainIDs lists the chains with a known deployment, ascending.
func (b *AddressBook) ChainIDs() []int64 {
	ids := make([]int64, 0, len(b.Networks))
	for id := range b.Networks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
