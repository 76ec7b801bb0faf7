// Package cmd implements the atecc-client subcommands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/cryptoauthkit/atecc-client/keys"
	"github.com/cryptoauthkit/atecc-client/pkg/atca"
)

// commonFlags are shared by every command that talks to the device.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "state-dir",
			Usage: "Directory holding the software device state",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "Path to the key manifest (default: <config>/atecc-client/keys.json)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

// defaultManifest is used when no manifest file exists yet: one key
// named "default" in slot 0.
func defaultManifest() *keys.Manifest {
	return &keys.Manifest{Keys: []keys.Entry{{Name: "default", Slot: 0}}}
}

// openDevice builds the logger, loads the key manifest and opens the
// device over the file-backed software transport. The caller closes
// the returned device.
func openDevice(cmd *cli.Command) (*atca.Device, *keys.Manifest, error) {
	level := zerolog.WarnLevel
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	manifestPath := cmd.String("manifest")
	if manifestPath == "" {
		var err error
		manifestPath, err = keys.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}

	manifest, err := keys.Load(manifestPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		manifest = defaultManifest()
	default:
		return nil, nil, err
	}

	stateDir := cmd.String("state-dir")
	if stateDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		stateDir = filepath.Join(configDir, "atecc-client", "state")
	}

	transport, err := atca.NewFileTransport(stateDir, manifest.Slots()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open transport: %w", err)
	}

	dev, err := atca.Open(transport, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open device: %w", err)
	}
	return dev, manifest, nil
}

// resolveSlot maps the --key flag through the manifest.
func resolveSlot(cmd *cli.Command, manifest *keys.Manifest) (atca.KeyID, error) {
	name := cmd.String("key")
	if name == "" {
		name = "default"
	}
	return manifest.Resolve(name)
}
