package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/opencafe/saiokit/pkg/auth"
	"github.com/opencafe/saiokit/pkg/config"
)

func newAuthCommand() *Command {
	cmd := &Command{
		Name:        "auth",
		Description: "Run the auth handshake and print the token and storage URL",
		Flags:       flag.NewFlagSet("auth", flag.ExitOnError),
		Run:         runAuth,
	}

	cmd.Flags.String("config", "saio.config", "Path to the config file")

	return cmd
}

func runAuth(args []string) error {
	flags := flag.NewFlagSet("auth", flag.ExitOnError)
	path := flags.String("config", "saio.config", "Path to the config file")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	creds, err := auth.Authenticate(context.Background(), cfg.UserAuth.Strategy,
		cfg.UserAuth.Endpoint, cfg.User.Username, cfg.User.Password)
	if err != nil {
		return err
	}

	fmt.Printf("token:       %s\n", creds.Token)
	fmt.Printf("storage URL: %s\n", creds.StorageURL)
	return nil
}
