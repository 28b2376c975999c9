package fairness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) (x Scalar, y, h, gamma Point) {
	t.Helper()
	x, err := hashToScalar("test/x", []byte("secret"))
	require.NoError(t, err)
	h = hashToPoint("test/h", []byte("input"))
	return x, mulBase(x), h, mulPoint(h, x)
}

func TestDLEQ_ProveVerify(t *testing.T) {
	x, y, h, gamma := testKeys(t)
	w, err := hashToScalar("test/w", []byte("nonce"))
	require.NoError(t, err)

	proof, err := proveDLEQ(y, h, gamma, x, w)
	require.NoError(t, err)
	ok, err := verifyDLEQ(y, h, gamma, proof)
	require.NoError(t, err)
	require.True(t, ok)

	decoded, err := DecodeDLEQProof(proof.Bytes())
	require.NoError(t, err)
	ok, err = verifyDLEQ(y, h, gamma, decoded)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDLEQ_RejectsWrongGamma(t *testing.T) {
	x, y, h, _ := testKeys(t)
	w, err := hashToScalar("test/w", []byte("nonce"))
	require.NoError(t, err)

	other := mulPoint(h, scalarAdd(x, x))
	proof, err := proveDLEQ(y, h, other, x, w)
	require.NoError(t, err)
	ok, err := verifyDLEQ(y, h, other, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDLEQ_ZeroNonce(t *testing.T) {
	x, y, h, gamma := testKeys(t)
	_, err := proveDLEQ(y, h, gamma, x, Scalar{})
	require.Error(t, err)
}

func TestDecodeDLEQProof_Length(t *testing.T) {
	_, err := DecodeDLEQProof(make([]byte, 95))
	require.Error(t, err)
}
