package verify

import (
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cryptoauthkit/atecc-client/opaque"
	"github.com/cryptoauthkit/atecc-client/pk"
)

// Service verifies messages against one bound key.
type Service struct {
	key pk.Key
}

// NewService creates a verification service over a key capability.
func NewService(key pk.Key) *Service {
	return &Service{key: key}
}

// Verify hashes the message and checks the detached signature. A
// mismatch or an undecodable signature yields Valid=false with a
// reason; device or dispatch failures are returned as errors.
func (s *Service) Verify(req *Request) (*Result, error) {
	digest := sha256.Sum256(req.Message)
	result := &Result{
		DigestHex:    hex.EncodeToString(digest[:]),
		SignatureLen: len(req.Signature),
	}

	err := s.key.VerifyDigest(crypto.SHA256, digest[:], req.Signature)
	switch {
	case err == nil:
		result.Valid = true
		return result, nil
	case errors.Is(err, pk.ErrVerifyFailed):
		result.Reason = "signature does not match message"
		return result, nil
	case errors.Is(err, opaque.ErrInvalidSignature):
		result.Reason = fmt.Sprintf("malformed signature: %v", err)
		return result, nil
	default:
		return nil, fmt.Errorf("verification aborted: %w", err)
	}
}
