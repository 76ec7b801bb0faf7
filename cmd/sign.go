package cmd

import (
	"context"
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cryptoauthkit/atecc-client/opaque"
	"github.com/cryptoauthkit/atecc-client/pk"
)

// SignCommand creates the sign command
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a file's SHA-256 digest with a secure element key",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "key",
				Usage: "Key name from the manifest (default: \"default\")",
			},
			&cli.StringFlag{
				Name:     "in",
				Usage:    "File to sign",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the DER signature to this file instead of printing hex",
			},
		),
		Action: runSignCommand,
	}
}

func runSignCommand(ctx context.Context, cmd *cli.Command) error {
	dev, manifest, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	slot, err := resolveSlot(cmd, manifest)
	if err != nil {
		return err
	}

	keyCtx := new(pk.Context)
	if _, err := opaque.Bind(keyCtx, dev, slot); err != nil {
		return fmt.Errorf("failed to bind key: %w", err)
	}
	defer keyCtx.Close()

	message, err := os.ReadFile(cmd.String("in"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	digest := sha256.Sum256(message)
	sig, err := keyCtx.SignDigest(nil, crypto.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	if out := cmd.String("out"); out != "" {
		if err := os.WriteFile(out, sig, 0o644); err != nil {
			return fmt.Errorf("failed to write signature: %w", err)
		}
		fmt.Printf("Signature written to %s (%d bytes)\n", out, len(sig))
		return nil
	}

	fmt.Printf("SHA-256:   %s\n", hex.EncodeToString(digest[:]))
	fmt.Printf("Signature: %s\n", hex.EncodeToString(sig))
	return nil
}
