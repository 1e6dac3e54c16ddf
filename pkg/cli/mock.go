package cli

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencafe/saiokit/pkg/mockswift"
)

func newMockCommand() *Command {
	cmd := &Command{
		Name:        "mock",
		Description: "Serve an in-process mock deployment",
		Flags:       flag.NewFlagSet("mock", flag.ExitOnError),
		Run:         runMock,
	}

	cmd.Flags.String("listen", "127.0.0.1:8080", "Address to listen on")
	cmd.Flags.Duration("expirer-interval", 0, "Scheduled expiry sweep interval, 0 disables the sweep")

	return cmd
}

func runMock(args []string) error {
	flags := flag.NewFlagSet("mock", flag.ExitOnError)
	listen := flags.String("listen", "127.0.0.1:8080", "Address to listen on")
	interval := flags.Duration("expirer-interval", 0, "Scheduled expiry sweep interval, 0 disables the sweep")

	if err := flags.Parse(args); err != nil {
		return err
	}

	log := logrus.New()
	srv, err := mockswift.New(mockswift.Options{
		ExpirerInterval: *interval,
		Log:             log,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	log.WithFields(logrus.Fields{
		"listen": *listen,
		"auth":   fmt.Sprintf("http://%s/auth/v1.0", *listen),
	}).Info("mock deployment listening")

	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpServer.ListenAndServe()
}
