package atca

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// NewFileTransport is NewSoftwareTransport with slot keys persisted as
// PKCS#8 PEM files under dir, so the emulated chip keeps its identity
// across runs. Missing slot files are created with fresh keys.
//
// This is still the software emulation: a real deployment replaces the
// whole transport, not the storage.
func NewFileTransport(dir string, slots ...KeyID) (*SoftwareTransport, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	tr := &SoftwareTransport{
		keys: make(map[KeyID]*ecdsa.PrivateKey, len(slots)),
		info: DeviceInfo{
			Serial:   "0123d0c0ffee5107ee",
			Revision: "0.0",
			Part:     "software-file",
		},
	}
	for _, slot := range slots {
		path := filepath.Join(dir, fmt.Sprintf("slot%d.pem", slot))
		key, err := loadSlotKey(path)
		if errors.Is(err, os.ErrNotExist) {
			key, err = createSlotKey(path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot, err)
		}
		tr.keys[slot] = key
	}
	return tr, nil
}

func loadSlotKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("atca: %s is not a PEM private key", path)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok || key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("atca: %s does not hold a P-256 key", path)
	}
	return key, nil
}

func createSlotKey(path string) (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slot key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slot key: %w", err)
	}

	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write slot key: %w", err)
	}
	return key, nil
}
