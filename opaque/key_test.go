package opaque

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/sha256"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoauthkit/atecc-client/pk"
	"github.com/cryptoauthkit/atecc-client/pkg/atca"
	"github.com/cryptoauthkit/atecc-client/sigcodec"
)

// countingTransport wraps a transport and records how often the device
// is actually reached.
type countingTransport struct {
	atca.Transport
	signs    int
	verifies int
}

func (c *countingTransport) Sign(slot atca.KeyID, digest []byte) ([]byte, error) {
	c.signs++
	return c.Transport.Sign(slot, digest)
}

func (c *countingTransport) Verify(slot atca.KeyID, raw, digest []byte) error {
	c.verifies++
	return c.Transport.Verify(slot, raw, digest)
}

// faultTransport fails every chip operation with a fixed status.
type faultTransport struct {
	atca.Transport
	code atca.Status
}

func (f *faultTransport) Sign(atca.KeyID, []byte) ([]byte, error) {
	return nil, &atca.StatusError{Op: "sign", Code: f.code}
}

func (f *faultTransport) Verify(atca.KeyID, []byte, []byte) error {
	return &atca.StatusError{Op: "verify", Code: f.code}
}

func bindTestKey(t *testing.T, tr atca.Transport, id atca.KeyID) (*pk.Context, *Key) {
	t.Helper()
	dev, err := atca.Open(tr, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	ctx := new(pk.Context)
	key, err := Bind(ctx, dev, id)
	require.NoError(t, err)
	return ctx, key
}

func TestBind(t *testing.T) {
	tr, err := atca.NewSoftwareTransport(0)
	require.NoError(t, err)
	dev, err := atca.Open(tr, zerolog.Nop())
	require.NoError(t, err)
	defer dev.Close()

	t.Run("nil context", func(t *testing.T) {
		_, err := Bind(nil, dev, 0)
		assert.ErrorIs(t, err, pk.ErrNilContext)
	})

	t.Run("nil device", func(t *testing.T) {
		_, err := Bind(new(pk.Context), nil, 0)
		assert.ErrorIs(t, err, ErrNoDevice)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Bind(new(pk.Context), dev, 12)
		assert.ErrorIs(t, err, atca.ErrKeyNotFound)
	})

	t.Run("successful bind installs the adapter", func(t *testing.T) {
		ctx := new(pk.Context)
		key, err := Bind(ctx, dev, 0)
		require.NoError(t, err)
		assert.Same(t, key, ctx.Key())
		assert.True(t, ctx.CanDo(pk.AlgorithmECDSA))
		require.NoError(t, ctx.Close())
	})

	t.Run("context binding is write-once", func(t *testing.T) {
		ctx := new(pk.Context)
		_, err := Bind(ctx, dev, 0)
		require.NoError(t, err)
		_, err = Bind(ctx, dev, 0)
		assert.ErrorIs(t, err, pk.ErrAlreadyBound)
		require.NoError(t, ctx.Close())
	})
}

func TestAlgorithmGating(t *testing.T) {
	base, err := atca.NewSoftwareTransport(1)
	require.NoError(t, err)
	tr := &countingTransport{Transport: base}
	_, key := bindTestKey(t, tr, 1)

	digest := sha256.Sum256([]byte("gated"))

	assert.True(t, key.CanDo(pk.AlgorithmECDSA))
	for _, alg := range []pk.Algorithm{pk.AlgorithmNone, pk.AlgorithmRSA, pk.AlgorithmECKey} {
		assert.False(t, key.CanDo(alg), "alg %s", alg)
	}

	t.Run("wrong hash never reaches the device", func(t *testing.T) {
		_, err := key.SignDigest(nil, crypto.SHA512, digest[:])
		assert.ErrorIs(t, err, pk.ErrUnsupportedAlgorithm)

		err = key.VerifyDigest(crypto.SHA1, digest[:], nil)
		assert.ErrorIs(t, err, pk.ErrUnsupportedAlgorithm)

		_, err = key.SignDigest(nil, crypto.SHA256, digest[:12])
		assert.ErrorIs(t, err, pk.ErrUnsupportedAlgorithm)

		assert.Zero(t, tr.signs)
		assert.Zero(t, tr.verifies)
	})
}

func TestSignAndVerifyDigest(t *testing.T) {
	base, err := atca.NewSoftwareTransport(2)
	require.NoError(t, err)
	_, key := bindTestKey(t, base, 2)

	digest := sha256.Sum256([]byte("delegate to the chip"))

	sig, err := key.SignDigest(nil, crypto.SHA256, digest[:])
	require.NoError(t, err)

	t.Run("round trip through the adapter", func(t *testing.T) {
		assert.NoError(t, key.VerifyDigest(crypto.SHA256, digest[:], sig))
	})

	t.Run("interchange encoding is standard DER", func(t *testing.T) {
		pub := key.Public().(*ecdsa.PublicKey)
		assert.True(t, ecdsa.VerifyASN1(pub, digest[:], sig))
	})

	t.Run("wrong digest fails verification", func(t *testing.T) {
		other := sha256.Sum256([]byte("something else"))
		assert.ErrorIs(t, key.VerifyDigest(crypto.SHA256, other[:], sig), pk.ErrVerifyFailed)
	})

	t.Run("undecodable signature", func(t *testing.T) {
		err := key.VerifyDigest(crypto.SHA256, digest[:], sig[:len(sig)-1])
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.NotErrorIs(t, err, pk.ErrVerifyFailed)
	})

	t.Run("trailing garbage is a format error not a mismatch", func(t *testing.T) {
		extended := make([]byte, len(sig), len(sig)+1)
		copy(extended, sig)
		extended = append(extended, 0x00)
		err := key.VerifyDigest(crypto.SHA256, digest[:], extended)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.ErrorIs(t, err, sigcodec.ErrLengthMismatch)
	})

	t.Run("crypto.Signer shim", func(t *testing.T) {
		sig, err := key.Sign(nil, digest[:], crypto.SHA256)
		require.NoError(t, err)
		assert.NoError(t, key.VerifyDigest(crypto.SHA256, digest[:], sig))

		_, err = key.Sign(nil, digest[:], nil)
		assert.ErrorIs(t, err, pk.ErrUnsupportedAlgorithm)
	})
}

func TestDeviceFaultsSurface(t *testing.T) {
	base, err := atca.NewSoftwareTransport(3)
	require.NoError(t, err)
	tr := &faultTransport{Transport: base, code: atca.StatusECCFault}
	_, key := bindTestKey(t, tr, 3)

	digest := sha256.Sum256([]byte("fault"))

	t.Run("signer fault carries the status code", func(t *testing.T) {
		_, err := key.SignDigest(nil, crypto.SHA256, digest[:])
		var statusErr *atca.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, atca.StatusECCFault, statusErr.Code)
	})

	t.Run("verifier fault is not a mismatch", func(t *testing.T) {
		valid, err := sigcodec.P256().Marshal(make([]byte, 64))
		require.NoError(t, err)

		err = key.VerifyDigest(crypto.SHA256, digest[:], valid)
		var statusErr *atca.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.NotErrorIs(t, err, pk.ErrVerifyFailed)
		assert.NotErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestCloseReleasesOnce(t *testing.T) {
	base, err := atca.NewSoftwareTransport(4)
	require.NoError(t, err)
	ctx, key := bindTestKey(t, base, 4)

	digest := sha256.Sum256([]byte("teardown"))

	require.NoError(t, ctx.Close())

	t.Run("second close reports released token", func(t *testing.T) {
		assert.ErrorIs(t, key.Close(), atca.ErrReleased)
	})

	t.Run("released key refuses operations", func(t *testing.T) {
		_, err := key.SignDigest(nil, crypto.SHA256, digest[:])
		assert.ErrorIs(t, err, atca.ErrReleased)
	})
}
