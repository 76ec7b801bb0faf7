package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cryptoauthkit/atecc-client/pkg/atca"
)

// AttestCommand creates the attest command
func AttestCommand() *cli.Command {
	return &cli.Command{
		Name:  "attest",
		Usage: "Produce a signed attestation report for a key slot",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "key",
				Usage: "Key name from the manifest (default: \"default\")",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the CBOR report to this file",
			},
			&cli.StringFlag{
				Name:  "sig-out",
				Usage: "Write the DER report signature to this file",
			},
		),
		Action: runAttestCommand,
	}
}

func runAttestCommand(ctx context.Context, cmd *cli.Command) error {
	dev, manifest, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	slot, err := resolveSlot(cmd, manifest)
	if err != nil {
		return err
	}

	report, sig, err := dev.Attest(slot)
	if err != nil {
		return fmt.Errorf("failed to attest %s: %w", slot, err)
	}

	decoded, err := atca.DecodeReport(report)
	if err != nil {
		return err
	}

	fmt.Printf("Report ID:  %s\n", decoded.ReportID)
	fmt.Printf("Serial:     %s\n", decoded.Serial)
	fmt.Printf("Slot:       %d\n", decoded.Slot)
	fmt.Printf("Public key: %s\n", hex.EncodeToString(decoded.PublicKey))
	fmt.Printf("Issued at:  %s\n", decoded.IssuedAt)
	fmt.Printf("Signature:  %s\n", hex.EncodeToString(sig))

	if out := cmd.String("out"); out != "" {
		if err := os.WriteFile(out, report, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if out := cmd.String("sig-out"); out != "" {
		if err := os.WriteFile(out, sig, 0o644); err != nil {
			return fmt.Errorf("failed to write report signature: %w", err)
		}
	}
	return nil
}
