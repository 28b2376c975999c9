package fairness

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
)

const (
	keyDomain    = "bj/v1/vrf-key"
	inputDomain  = "bj/v1/vrf-input"
	nonceDomain  = "bj/v1/vrf-nonce"
	outputPrefix = "BJv1|vrf_output|"

	// SecretBytes is the length of a generated house secret.
	SecretBytes = 32
)

// VRF turns (sessionID, nonce) into draw values. Values are unpredictable
// without the house secret, and every value carries a proof that can be
// checked against the public key, so the house cannot choose cards either.
type VRF struct {
	x Scalar
	y Point
}

// Evaluation is one VRF output with its proof.
type Evaluation struct {
	SessionID uint64 `json:"sessionId"`
	Nonce     uint64 `json:"nonce"`
	Gamma     []byte `json:"gamma"`
	Proof     []byte `json:"proof"`
	Value     uint64 `json:"value"`
}

func GenerateSecret() ([]byte, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("vrf: read entropy: %w", err)
	}
	return b, nil
}

func NewVRF(secret []byte) (*VRF, error) {
	if len(secret) < SecretBytes {
		return nil, fmt.Errorf("vrf: secret must be at least %d bytes", SecretBytes)
	}
	x, err := hashToScalar(keyDomain, secret)
	if err != nil {
		return nil, err
	}
	if x.IsZero() {
		return nil, fmt.Errorf("vrf: degenerate secret")
	}
	return &VRF{x: x, y: mulBase(x)}, nil
}

func (v *VRF) PublicKey() []byte {
	return v.y.Bytes()
}

func inputPoint(sessionID, nonce uint64) Point {
	return hashToPoint(inputDomain, u64le(sessionID), u64le(nonce))
}

func outputValue(gamma Point) uint64 {
	h := sha512.New()
	h.Write([]byte(outputPrefix))
	h.Write(gamma.Bytes())
	return binary.LittleEndian.Uint64(h.Sum(nil)[:8])
}

func (v *VRF) Prove(sessionID, nonce uint64) (Evaluation, error) {
	h := inputPoint(sessionID, nonce)
	gamma := mulPoint(h, v.x)
	w, err := hashToScalar(nonceDomain, v.x.Bytes(), h.Bytes())
	if err != nil {
		return Evaluation{}, err
	}
	proof, err := proveDLEQ(v.y, h, gamma, v.x, w)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		SessionID: sessionID,
		Nonce:     nonce,
		Gamma:     gamma.Bytes(),
		Proof:     proof.Bytes(),
		Value:     outputValue(gamma),
	}, nil
}

// NextValue implements blackjack.Randomness.
func (v *VRF) NextValue(sessionID, nonce uint64) (uint64, error) {
	h := inputPoint(sessionID, nonce)
	return outputValue(mulPoint(h, v.x)), nil
}

// Verify checks ev against the house public key.
func Verify(pubKey []byte, ev Evaluation) error {
	y, err := PointFromBytesCanonical(pubKey)
	if err != nil {
		return fmt.Errorf("vrf: public key: %w", err)
	}
	gamma, err := PointFromBytesCanonical(ev.Gamma)
	if err != nil {
		return fmt.Errorf("vrf: gamma: %w", err)
	}
	proof, err := DecodeDLEQProof(ev.Proof)
	if err != nil {
		return fmt.Errorf("vrf: proof: %w", err)
	}
	ok, err := verifyDLEQ(y, inputPoint(ev.SessionID, ev.Nonce), gamma, proof)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("vrf: invalid proof")
	}
	if outputValue(gamma) != ev.Value {
		return fmt.Errorf("vrf: value does not match gamma")
	}
	return nil
}
