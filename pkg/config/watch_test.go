package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_DeliversReloadedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saio.config")
	require.NoError(t, os.WriteFile(path, []byte(referenceDocument), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	reloads := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, log, func(cfg *Config) {
			reloads <- cfg
		})
	}()

	// Give the watcher a moment to register before the write.
	time.Sleep(100 * time.Millisecond)

	updated := `[user_auth_config]
endpoint=http://192.168.0.9:8080/
strategy=saio_tempauth

[user]
username=test:tester
password=testing
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case cfg := <-reloads:
		assert.Equal(t, "http://192.168.0.9:8080/", cfg.UserAuth.Endpoint)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_IgnoresBrokenRevision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saio.config")
	require.NoError(t, os.WriteFile(path, []byte(referenceDocument), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 4)
	go func() {
		_ = Watch(ctx, path, logrus.New(), func(cfg *Config) {
			reloads <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// A revision with a broken enabled_features value must never reach the
	// callback.
	broken := `[objectstorage_api]
enabled_features=__BROKEN__
`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0644))

	select {
	case cfg := <-reloads:
		t.Fatalf("broken revision was delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
