// Package keys maps human-readable key names to secure-element slots.
//
// # Manifest format
//
// The manifest is a JSON file, by default at
// ~/.config/atecc-client/keys.json:
//
//	{
//	  "keys": [
//	    {"name": "tls-client", "slot": 0},
//	    {"name": "attestation", "slot": 2}
//	  ]
//	}
//
// Names are unique; slots may be shared between names. Which physical
// key sits in which slot is decided at provisioning time, outside this
// tool.
package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cryptoauthkit/atecc-client/pkg/atca"
)

// ErrUnknownKey is returned when a name is not present in the manifest.
var ErrUnknownKey = errors.New("keys: unknown key name")

// Entry binds one name to one device slot.
type Entry struct {
	Name string `json:"name"`
	Slot uint16 `json:"slot"`
}

// Manifest is the parsed key manifest.
type Manifest struct {
	Keys []Entry `json:"keys"`
}

// DefaultPath returns the standard manifest location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "atecc-client", "keys.json"), nil
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key manifest: %w", err)
	}
	return Parse(data)
}

// Parse validates raw manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse key manifest: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Keys))
	for _, e := range m.Keys {
		if e.Name == "" {
			return nil, errors.New("keys: manifest entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("keys: duplicate manifest entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return &m, nil
}

// Resolve returns the slot bound to a name.
func (m *Manifest) Resolve(name string) (atca.KeyID, error) {
	for _, e := range m.Keys {
		if e.Name == name {
			return atca.KeyID(e.Slot), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Slots returns the distinct slots referenced by the manifest, in
// first-seen order.
func (m *Manifest) Slots() []atca.KeyID {
	var slots []atca.KeyID
	seen := make(map[atca.KeyID]struct{})
	for _, e := range m.Keys {
		id := atca.KeyID(e.Slot)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		slots = append(slots, id)
	}
	return slots
}
