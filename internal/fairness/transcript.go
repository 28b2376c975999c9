package fairness

import (
	"crypto/sha512"
	"fmt"
	"hash"
)

var (
	transcriptPrefix   = []byte("BJv1|transcript|")
	hashToScalarPrefix = []byte("BJv1|hash_to_scalar|")
	hashToPointPrefix  = []byte("BJv1|hash_to_point|")
)

func updateLenBytes(h hash.Hash, b []byte) {
	h.Write(u32le(uint32(len(b))))
	h.Write(b)
}

// hashToScalar hashes length-prefixed messages under domainSep to a scalar.
func hashToScalar(domainSep string, msgs ...[]byte) (Scalar, error) {
	h := sha512.New()
	h.Write(hashToScalarPrefix)
	updateLenBytes(h, []byte(domainSep))
	for _, m := range msgs {
		if m == nil {
			return Scalar{}, fmt.Errorf("hashToScalar: nil msg")
		}
		updateLenBytes(h, m)
	}
	return ScalarFromUniformBytes(h.Sum(nil))
}

func hashToPoint(domainSep string, msgs ...[]byte) Point {
	h := sha512.New()
	h.Write(hashToPointPrefix)
	updateLenBytes(h, []byte(domainSep))
	for _, m := range msgs {
		updateLenBytes(h, m)
	}
	return pointFromUniformBytes(h.Sum(nil))
}

// transcript is a single-use Fiat-Shamir transcript; challengeScalar
// finalizes it.
type transcript struct {
	h hash.Hash
}

func newTranscript(domainSep string) *transcript {
	h := sha512.New()
	h.Write(transcriptPrefix)
	updateLenBytes(h, []byte(domainSep))
	return &transcript{h: h}
}

func (t *transcript) appendMessage(label string, msg []byte) {
	t.h.Write([]byte("msg"))
	updateLenBytes(t.h, []byte(label))
	updateLenBytes(t.h, msg)
}

func (t *transcript) challengeScalar(label string) (Scalar, error) {
	t.h.Write([]byte("challenge"))
	updateLenBytes(t.h, []byte(label))
	return ScalarFromUniformBytes(t.h.Sum(nil))
}
