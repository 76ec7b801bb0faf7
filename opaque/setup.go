package opaque

import (
	"fmt"

	"github.com/cryptoauthkit/atecc-client/pk"
	"github.com/cryptoauthkit/atecc-client/pkg/atca"
)

// Bind resolves a key slot on the device, wraps it in an opaque Key and
// installs that key into the generic context. This is the only place
// the secure element and the dispatch layer meet; no cryptography
// happens here.
//
// The installed key owns the resolved token; closing the context (or
// the key) releases it.
func Bind(ctx *pk.Context, dev *atca.Device, id atca.KeyID) (*Key, error) {
	if ctx == nil {
		return nil, pk.ErrNilContext
	}
	if dev == nil {
		return nil, ErrNoDevice
	}

	token, err := dev.KeyToken(id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", id, err)
	}

	key, err := NewKey(token)
	if err != nil {
		token.Release()
		return nil, err
	}

	if err := ctx.Install(key); err != nil {
		key.Close()
		return nil, err
	}
	return key, nil
}
