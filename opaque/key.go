// Package opaque implements the hardware-backed variant of pk.Key. An
// opaque key holds no private material: signing and verification are
// delegated to a secure-element key token, and signatures are translated
// between the chip's raw R || S form and the DER interchange encoding.
package opaque

import (
	"crypto"
	"errors"
	"fmt"
	"io"

	"github.com/cryptoauthkit/atecc-client/pk"
	"github.com/cryptoauthkit/atecc-client/pkg/atca"
	"github.com/cryptoauthkit/atecc-client/sigcodec"
)

var (
	// ErrNoDevice is returned by Bind when no device handle is supplied.
	ErrNoDevice = errors.New("opaque: no device")

	// ErrInvalidSignature is returned by VerifyDigest when the DER
	// signature cannot be decoded. The codec error is wrapped.
	ErrInvalidSignature = errors.New("opaque: invalid signature encoding")
)

// Key delegates ECDSA P-256/SHA-256 operations to a secure element. It
// implements pk.Key and crypto.Signer. A Key owns its token exclusively:
// Close releases it, exactly once.
type Key struct {
	token *atca.KeyToken
	codec sigcodec.Codec
	pub   crypto.PublicKey
}

var _ pk.Key = (*Key)(nil)
var _ crypto.Signer = (*Key)(nil)

// NewKey builds an opaque key around a device key token. The public key
// is read from the device once, up front. On success ownership of the
// token passes to the returned Key; on error the caller keeps it.
func NewKey(token *atca.KeyToken) (*Key, error) {
	if token == nil {
		return nil, errors.New("opaque: nil key token")
	}
	pub, err := token.Public()
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return &Key{token: token, codec: sigcodec.P256(), pub: pub}, nil
}

// CanDo reports true for the ECDSA family only.
func (k *Key) CanDo(alg pk.Algorithm) bool {
	return alg == pk.AlgorithmECDSA
}

// Public returns the public half read from the device at construction.
func (k *Key) Public() crypto.PublicKey {
	return k.pub
}

// SignDigest signs a SHA-256 digest on the device and returns the DER
// signature. The rand argument is ignored: the chip draws its own
// nonces. The hash gate runs before any device call. Device failures
// are not retried; the wrapped *atca.StatusError carries the chip's
// status code.
func (k *Key) SignDigest(_ io.Reader, hash crypto.Hash, digest []byte) ([]byte, error) {
	if err := checkHash(hash, digest); err != nil {
		return nil, err
	}

	raw, err := k.token.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("device sign: %w", err)
	}
	return k.codec.Marshal(raw)
}

// VerifyDigest decodes a DER signature and checks it on the device.
// Decode failures surface as ErrInvalidSignature, a reported mismatch
// as pk.ErrVerifyFailed, and any other device fault as the wrapped
// status error. Verification is all-or-nothing.
func (k *Key) VerifyDigest(hash crypto.Hash, digest, sig []byte) error {
	if err := checkHash(hash, digest); err != nil {
		return err
	}

	raw, err := k.codec.Unmarshal(sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	switch err := k.token.Verify(raw, digest); {
	case err == nil:
		return nil
	case errors.Is(err, atca.ErrBadSignature):
		return pk.ErrVerifyFailed
	default:
		return fmt.Errorf("device verify: %w", err)
	}
}

// Sign implements crypto.Signer over SignDigest, so an opaque key can
// be handed to anything that takes a standard signer.
func (k *Key) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts == nil {
		return nil, pk.ErrUnsupportedAlgorithm
	}
	return k.SignDigest(rand, opts.HashFunc(), digest)
}

// Close releases the owned key token. A Key must not be used after
// Close; a second Close reports the token's release error.
func (k *Key) Close() error {
	return k.token.Release()
}

// checkHash enforces the single supported pairing: SHA-256 digests of
// exactly 32 bytes.
func checkHash(hash crypto.Hash, digest []byte) error {
	if hash != crypto.SHA256 || len(digest) != hash.Size() {
		return pk.ErrUnsupportedAlgorithm
	}
	return nil
}
