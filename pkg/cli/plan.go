package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/opencafe/saiokit/pkg/config"
)

func newPlanCommand() *Command {
	cmd := &Command{
		Name:        "plan",
		Description: "Export the run plan as YAML",
		Flags:       flag.NewFlagSet("plan", flag.ExitOnError),
		Run:         runPlan,
	}

	cmd.Flags.String("config", "saio.config", "Path to the config file")
	cmd.Flags.String("out", "", "Write the plan to this file instead of stdout")

	return cmd
}

func runPlan(args []string) error {
	flags := flag.NewFlagSet("plan", flag.ExitOnError)
	path := flags.String("config", "saio.config", "Path to the config file")
	out := flags.String("out", "", "Write the plan to this file instead of stdout")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	return cfg.WritePlan(w)
}
