package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cryptoauthkit/atecc-client/opaque"
	"github.com/cryptoauthkit/atecc-client/pk"
	"github.com/cryptoauthkit/atecc-client/verify"
)

// ErrSignatureInvalid is returned (and reported via the exit status)
// when verification completes but the signature does not check out.
var ErrSignatureInvalid = errors.New("signature invalid")

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a detached DER signature against a file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "key",
				Usage: "Key name from the manifest (default: \"default\")",
			},
			&cli.StringFlag{
				Name:     "in",
				Usage:    "Signed file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "sig",
				Usage:    "Detached DER signature file",
				Required: true,
			},
		),
		Action: runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
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
	key, err := opaque.Bind(keyCtx, dev, slot)
	if err != nil {
		return fmt.Errorf("failed to bind key: %w", err)
	}
	defer keyCtx.Close()

	message, err := os.ReadFile(cmd.String("in"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	sig, err := os.ReadFile(cmd.String("sig"))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	result, err := verify.NewService(key).Verify(&verify.Request{
		Message:   message,
		Signature: sig,
	})
	if err != nil {
		return err
	}

	fmt.Print(verify.NewFormatter().FormatResult(result))
	if !result.Valid {
		return ErrSignatureInvalid
	}
	return nil
}
