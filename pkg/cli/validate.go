package cli

import (
	"flag"
	"fmt"

	"github.com/opencafe/saiokit/pkg/config"
)

func newValidateCommand() *Command {
	cmd := &Command{
		Name:        "validate",
		Description: "Validate a saio.config file",
		Flags:       flag.NewFlagSet("validate", flag.ExitOnError),
		Run:         runValidate,
	}

	cmd.Flags.String("config", "saio.config", "Path to the config file")

	return cmd
}

func runValidate(args []string) error {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	path := flags.String("config", "saio.config", "Path to the config file")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: OK\n", *path)
	fmt.Printf("  endpoint: %s\n", cfg.UserAuth.Endpoint)
	fmt.Printf("  strategy: %s\n", cfg.UserAuth.Strategy)
	fmt.Printf("  user:     %s\n", cfg.User.Username)
	fmt.Printf("  features: %s\n", cfg.ObjectStorage.EnabledFeatures)
	if cfg.ObjectStorage.ObjectExpirerRunInterval > 0 {
		fmt.Printf("  expirer:  every %s\n", cfg.ObjectStorage.ObjectExpirerRunInterval)
	} else {
		fmt.Printf("  expirer:  not configured, expiry checks skipped\n")
	}
	return nil
}
