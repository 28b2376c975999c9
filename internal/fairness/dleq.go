package fairness

import "fmt"

// DLEQProof shows log_G(Y) == log_H(Gamma) without revealing the secret.
type DLEQProof struct {
	// A = w*G
	A Point
	// B = w*H
	B Point
	// S = w + e*x
	S Scalar
}

const dleqDomain = "bj/v1/vrf-dleq"

func dleqChallenge(y, h, gamma, a, b Point) (Scalar, error) {
	tr := newTranscript(dleqDomain)
	tr.appendMessage("y", y.Bytes())
	tr.appendMessage("h", h.Bytes())
	tr.appendMessage("gamma", gamma.Bytes())
	tr.appendMessage("a", a.Bytes())
	tr.appendMessage("b", b.Bytes())
	return tr.challengeScalar("e")
}

func proveDLEQ(y, h, gamma Point, x, w Scalar) (DLEQProof, error) {
	if w.IsZero() {
		return DLEQProof{}, fmt.Errorf("dleq: w must be non-zero")
	}
	a := mulBase(w)
	b := mulPoint(h, w)
	e, err := dleqChallenge(y, h, gamma, a, b)
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: b, S: scalarAdd(w, scalarMul(e, x))}, nil
}

func verifyDLEQ(y, h, gamma Point, proof DLEQProof) (bool, error) {
	e, err := dleqChallenge(y, h, gamma, proof.A, proof.B)
	if err != nil {
		return false, err
	}
	// s*G == a + e*y
	if !pointEq(mulBase(proof.S), pointAdd(proof.A, mulPoint(y, e))) {
		return false, nil
	}
	// s*H == b + e*gamma
	if !pointEq(mulPoint(h, proof.S), pointAdd(proof.B, mulPoint(gamma, e))) {
		return false, nil
	}
	return true, nil
}

// Encoding: A(32) || B(32) || S(32 le)
func (p DLEQProof) Bytes() []byte {
	out := make([]byte, 0, 3*PointBytes)
	out = append(out, p.A.Bytes()...)
	out = append(out, p.B.Bytes()...)
	out = append(out, p.S.Bytes()...)
	return out
}

func DecodeDLEQProof(b []byte) (DLEQProof, error) {
	if len(b) != 96 {
		return DLEQProof{}, fmt.Errorf("dleq: expected 96 bytes")
	}
	a, err := PointFromBytesCanonical(b[0:32])
	if err != nil {
		return DLEQProof{}, err
	}
	bl, err := PointFromBytesCanonical(b[32:64])
	if err != nil {
		return DLEQProof{}, err
	}
	s, err := ScalarFromBytesCanonical(b[64:96])
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: bl, S: s}, nil
}
