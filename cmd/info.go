package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// InfoCommand creates the info command
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show secure element identification",
		Flags:  commonFlags(),
		Action: runInfoCommand,
	}
}

func runInfoCommand(ctx context.Context, cmd *cli.Command) error {
	dev, manifest, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	info, err := dev.Info()
	if err != nil {
		return fmt.Errorf("failed to read device info: %w", err)
	}

	fmt.Printf("Part:     %s\n", info.Part)
	fmt.Printf("Serial:   %s\n", info.Serial)
	fmt.Printf("Revision: %s\n", info.Revision)

	fmt.Println("Keys:")
	for _, entry := range manifest.Keys {
		fmt.Printf("  %-16s slot %d\n", entry.Name, entry.Slot)
	}
	return nil
}
