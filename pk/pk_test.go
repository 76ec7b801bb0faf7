package pk

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextBinding(t *testing.T) {
	key, err := GenerateSoftwareKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("payload"))

	t.Run("unbound context refuses operations", func(t *testing.T) {
		var ctx Context
		_, err := ctx.SignDigest(nil, crypto.SHA256, digest[:])
		assert.ErrorIs(t, err, ErrNotBound)
		assert.ErrorIs(t, ctx.VerifyDigest(crypto.SHA256, digest[:], nil), ErrNotBound)
		assert.False(t, ctx.CanDo(AlgorithmECDSA))
	})

	t.Run("binding is write-once", func(t *testing.T) {
		var ctx Context
		require.NoError(t, ctx.Install(key))
		assert.ErrorIs(t, ctx.Install(key), ErrAlreadyBound)
		assert.Same(t, key, ctx.Key())
	})

	t.Run("close unbinds", func(t *testing.T) {
		var ctx Context
		sk, err := GenerateSoftwareKey()
		require.NoError(t, err)
		require.NoError(t, ctx.Install(sk))
		require.NoError(t, ctx.Close())
		assert.Nil(t, ctx.Key())
		assert.NoError(t, ctx.Close())
	})
}

func TestSoftwareKey(t *testing.T) {
	key, err := GenerateSoftwareKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("software fallback"))

	t.Run("algorithm gating", func(t *testing.T) {
		assert.True(t, key.CanDo(AlgorithmECDSA))
		for _, alg := range []Algorithm{AlgorithmNone, AlgorithmRSA, AlgorithmECKey} {
			assert.False(t, key.CanDo(alg), "alg %s", alg)
		}
	})

	t.Run("sign and verify through the interface", func(t *testing.T) {
		var ctx Context
		require.NoError(t, ctx.Install(key))

		sig, err := ctx.SignDigest(nil, crypto.SHA256, digest[:])
		require.NoError(t, err)
		assert.NoError(t, ctx.VerifyDigest(crypto.SHA256, digest[:], sig))

		// The interchange encoding must be plain DER, checkable by any
		// standard verifier.
		pub := key.Public().(*ecdsa.PublicKey)
		assert.True(t, ecdsa.VerifyASN1(pub, digest[:], sig))
	})

	t.Run("wrong hash rejected before signing", func(t *testing.T) {
		_, err := key.SignDigest(nil, crypto.SHA512, digest[:])
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
		assert.ErrorIs(t, key.VerifyDigest(crypto.SHA1, digest[:], nil), ErrUnsupportedAlgorithm)
	})

	t.Run("wrong digest length rejected", func(t *testing.T) {
		_, err := key.SignDigest(nil, crypto.SHA256, digest[:20])
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("tampered signature rejected", func(t *testing.T) {
		sig, err := key.SignDigest(nil, crypto.SHA256, digest[:])
		require.NoError(t, err)
		sig[len(sig)-1] ^= 0x01
		assert.Error(t, key.VerifyDigest(crypto.SHA256, digest[:], sig))
	})
}
