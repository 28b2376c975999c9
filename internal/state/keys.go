package state

import "encoding/binary"

var (
	MetaKey           = []byte{0x01}
	AccountPrefix     = []byte{0x02}
	AccountKeyPrefix  = []byte{0x03}
	NoncePrefix       = []byte{0x04}
	SessionPrefix     = []byte{0x05}
	storePrefixLength = 1
)

func AccountKey(addr string) []byte {
	return append(append([]byte{}, AccountPrefix...), addr...)
}

func AccountPubKeyKey(addr string) []byte {
	return append(append([]byte{}, AccountKeyPrefix...), addr...)
}

func NonceKey(signer string) []byte {
	return append(append([]byte{}, NoncePrefix...), signer...)
}

func SessionKey(player string) []byte {
	return append(append([]byte{}, SessionPrefix...), player...)
}

// prefixEnd returns the smallest key strictly greater than every key with p
// as a prefix. Single-byte prefixes below 0xff only.
func prefixEnd(p []byte) []byte {
	end := append([]byte{}, p...)
	end[len(end)-1]++
	return end
}

func u64be(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
