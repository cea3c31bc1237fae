package types

import "math/big"

// base58Alphabet is the Bitcoin/Stacks base58 alphabet. Checksum
// verification is out of scope (spec.md §1 excludes value serialization
// to persistent/wire form); this only needs a deterministic byte
// sequence to populate a StandardPrincipalData, not a validated address.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Index = func() map[byte]int64 {
	m := make(map[byte]int64, len(base58Alphabet))
	for i := 0; i < len(base58Alphabet); i++ {
		m[base58Alphabet[i]] = int64(i)
	}
	return m
}()

// DecodeBase58Principal decodes s (without its leading `'`) into a
// StandardPrincipalData: the first byte is the version, the remaining 20
// are the hash, left-padded/truncated to fit.
func DecodeBase58Principal(s string) (StandardPrincipalData, bool) {
	n := new(big.Int)
	base := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		v, ok := base58Index[s[i]]
		if !ok {
			return StandardPrincipalData{}, false
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(v))
	}
	raw := n.Bytes()
	var out [21]byte
	if len(raw) > 21 {
		raw = raw[len(raw)-21:]
	}
	copy(out[21-len(raw):], raw)

	var p StandardPrincipalData
	p.Version = out[0]
	copy(p.Hash[:], out[1:])
	return p, true
}
