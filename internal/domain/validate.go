package domain

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SecureScheme is the only URI scheme accepted for token and metadata URIs.
const SecureScheme = "https://"

// ValidateURI rejects URIs that do not use the secure transport scheme.
func ValidateURI(uri string) error {
	if !strings.HasPrefix(uri, SecureScheme) {
		return Invariantf("uri", "%s must begin with `%s`", uri, SecureScheme)
	}
	return nil
}

// ValidateMediaData checks both URIs of a MediaData.
func ValidateMediaData(data MediaData) error {
	if err := ValidateURI(data.TokenURI); err != nil {
		return err
	}
	return ValidateURI(data.MetadataURI)
}

// ParseAddress validates a hex ledger address.
func ParseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, Invariantf(field, "%s is not a valid address", s)
	}
	return common.HexToAddress(s), nil
}

// ParseBytes32 decodes a 0x-prefixed (or bare) 32-byte hex digest.
func ParseBytes32(s string) ([32]byte, error) {
	var out [32]byte
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, Invariantf("hash", "%s is not valid hex: %v", s, err)
	}
	if len(b) != 32 {
		return out, Invariantf("hash", "%s is %d bytes, expected 32", s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// SHA256FromBytes hashes a payload with the digest used on-chain.
func SHA256FromBytes(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// SHA256FromHex hashes the bytes encoded by a hex string.
func SHA256FromHex(s string) ([32]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("decode hex: %w", err)
	}
	return sha256.Sum256(b), nil
}

// SHA256FromFile streams a file through sha256.
func SHA256FromFile(path string) ([32]byte, error) {
	var out [32]byte
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, err
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// HashHex renders a digest as 0x-prefixed hex.
func HashHex(h [32]byte) string {
	return hexutil.Encode(h[:])
}
