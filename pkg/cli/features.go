package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/opencafe/saiokit/pkg/auth"
	"github.com/opencafe/saiokit/pkg/config"
	"github.com/opencafe/saiokit/pkg/swift"
)

func newFeaturesCommand() *Command {
	cmd := &Command{
		Name:        "features",
		Description: "Show the enabled feature set, resolving __ASK__ against /info",
		Flags:       flag.NewFlagSet("features", flag.ExitOnError),
		Run:         runFeatures,
	}

	cmd.Flags.String("config", "saio.config", "Path to the config file")

	return cmd
}

func runFeatures(args []string) error {
	flags := flag.NewFlagSet("features", flag.ExitOnError)
	path := flags.String("config", "saio.config", "Path to the config file")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	set := cfg.ObjectStorage.EnabledFeatures
	if set.IsAsk() {
		ctx := context.Background()

		creds, err := auth.Authenticate(ctx, cfg.UserAuth.Strategy,
			cfg.UserAuth.Endpoint, cfg.User.Username, cfg.User.Password)
		if err != nil {
			return fmt.Errorf("discovering features: %w", err)
		}

		client, err := swift.NewClient(creds.StorageURL, creds.Token)
		if err != nil {
			return err
		}

		set, err = set.Resolve(ctx, client)
		if err != nil {
			return fmt.Errorf("discovering features: %w", err)
		}
	}

	switch {
	case set.IsAll():
		fmt.Println("all features enabled")
	case set.IsNone():
		fmt.Println("no features enabled")
	default:
		for _, name := range set.Names() {
			fmt.Println(name)
		}
	}
	return nil
}
