package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cryptoauthkit/atecc-client/cmd"
)

func main() {
	app := &cli.Command{
		Name:  "atecc-client",
		Usage: "ECDSA signing and verification backed by an ATECC secure element",
		Commands: []*cli.Command{
			cmd.SignCommand(),
			cmd.VerifyCommand(),
			cmd.InfoCommand(),
			cmd.AttestCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
