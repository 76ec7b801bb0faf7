package pk

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"io"
)

// SoftwareKey is the in-memory ECDSA P-256 variant of Key. It exists
// for development and as the fallback when no secure element is
// present; hardware deployments use the opaque variant instead.
type SoftwareKey struct {
	priv *ecdsa.PrivateKey
}

// NewSoftwareKey wraps an existing P-256 private key.
func NewSoftwareKey(priv *ecdsa.PrivateKey) (*SoftwareKey, error) {
	if priv == nil {
		return nil, errors.New("pk: nil private key")
	}
	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("pk: unsupported curve %s", priv.Curve.Params().Name)
	}
	return &SoftwareKey{priv: priv}, nil
}

// GenerateSoftwareKey creates a SoftwareKey with a fresh P-256 key.
func GenerateSoftwareKey() (*SoftwareKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), cryptorand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &SoftwareKey{priv: priv}, nil
}

// CanDo reports true for the ECDSA family only.
func (k *SoftwareKey) CanDo(alg Algorithm) bool {
	return alg == AlgorithmECDSA
}

// Public returns the corresponding public key.
func (k *SoftwareKey) Public() crypto.PublicKey {
	return &k.priv.PublicKey
}

// SignDigest signs a SHA-256 digest and returns the DER signature.
func (k *SoftwareKey) SignDigest(rand io.Reader, hash crypto.Hash, digest []byte) ([]byte, error) {
	if hash != crypto.SHA256 || len(digest) != hash.Size() {
		return nil, ErrUnsupportedAlgorithm
	}
	if rand == nil {
		rand = cryptorand.Reader
	}
	sig, err := ecdsa.SignASN1(rand, k.priv, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	return sig, nil
}

// VerifyDigest checks a DER signature over a SHA-256 digest.
func (k *SoftwareKey) VerifyDigest(hash crypto.Hash, digest, sig []byte) error {
	if hash != crypto.SHA256 || len(digest) != hash.Size() {
		return ErrUnsupportedAlgorithm
	}
	if !ecdsa.VerifyASN1(&k.priv.PublicKey, digest, sig) {
		return ErrVerifyFailed
	}
	return nil
}

// Close drops the key reference.
func (k *SoftwareKey) Close() error {
	k.priv = nil
	return nil
}
