package swiftcli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	name   string
	args   []string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	return f.stdout, f.err
}

func saioGlobals() GlobalOptions {
	return GlobalOptions{
		AuthURL: "http://127.0.0.1:8080/auth/v1.0",
		User:    "test:tester",
		Key:     "testing",
	}
}

func TestArgvGlobals(t *testing.T) {
	fake := &fakeRunner{}
	cli := New(GlobalOptions{
		AuthURL:     "http://127.0.0.1:8080/auth/v1.0",
		User:        "test:tester",
		Key:         "testing",
		AuthVersion: "1.0",
		Retries:     3,
		Verbose:     true,
	}, WithRunner(fake))

	_, err := cli.Stat(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "swift", fake.name)
	assert.Equal(t, []string{
		"--auth", "http://127.0.0.1:8080/auth/v1.0",
		"--auth-version", "1.0",
		"--key", "testing",
		"--retries", "3",
		"--user", "test:tester",
		"--verbose",
		"stat",
	}, fake.args)
}

func TestArgvSkipsUnsetGlobals(t *testing.T) {
	fake := &fakeRunner{}
	cli := New(saioGlobals(), WithRunner(fake))

	_, err := cli.Stat(context.Background(), "", "")
	require.NoError(t, err)

	assert.NotContains(t, fake.args, "--retries")
	assert.NotContains(t, fake.args, "--verbose")
	assert.NotContains(t, fake.args, "--auth-version")
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		name string
		call func(cli *CLI) error
		want []string
	}{
		{
			name: "upload with object name",
			call: func(cli *CLI) error {
				_, err := cli.Upload(context.Background(), "photos", []string{"cat.jpg"},
					UploadOptions{ObjectName: "pets/cat.jpg"})
				return err
			},
			want: []string{"upload", "photos", "cat.jpg", "--object-name", "pets/cat.jpg"},
		},
		{
			name: "upload segmented",
			call: func(cli *CLI) error {
				_, err := cli.Upload(context.Background(), "big", []string{"dump.bin"},
					UploadOptions{SegmentSize: 1048576})
				return err
			},
			want: []string{"upload", "big", "dump.bin", "--segment-size", "1048576"},
		},
		{
			name: "download to path",
			call: func(cli *CLI) error {
				_, err := cli.Download(context.Background(), "photos", "cat.jpg",
					DownloadOptions{Output: "/tmp/cat.jpg"})
				return err
			},
			want: []string{"download", "photos", "cat.jpg", "--output", "/tmp/cat.jpg"},
		},
		{
			name: "delete objects",
			call: func(cli *CLI) error {
				_, err := cli.Delete(context.Background(), "photos", "a.jpg", "b.jpg")
				return err
			},
			want: []string{"delete", "photos", "a.jpg", "b.jpg"},
		},
		{
			name: "stat object",
			call: func(cli *CLI) error {
				_, err := cli.Stat(context.Background(), "photos", "cat.jpg")
				return err
			},
			want: []string{"stat", "photos", "cat.jpg"},
		},
		{
			name: "post metadata in sorted order",
			call: func(cli *CLI) error {
				_, err := cli.Post(context.Background(), "photos", "",
					map[string]string{"Color": "blue", "Animal": "cat"})
				return err
			},
			want: []string{"post", "photos", "--meta", "Animal:cat", "--meta", "Color:blue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRunner{}
			cli := New(saioGlobals(), WithRunner(fake))

			require.NoError(t, tt.call(cli))

			// Global flags come first; the subcommand vector follows.
			require.Greater(t, len(fake.args), len(tt.want))
			assert.Equal(t, tt.want, fake.args[len(fake.args)-len(tt.want):])
		})
	}
}

func TestListParsesLines(t *testing.T) {
	fake := &fakeRunner{stdout: "alpha\nbeta\n\ngamma\n"}
	cli := New(saioGlobals(), WithRunner(fake))

	names, err := cli.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestListPropagatesErrors(t *testing.T) {
	fake := &fakeRunner{err: errors.New("exit status 1")}
	cli := New(saioGlobals(), WithRunner(fake))

	_, err := cli.List(context.Background(), "missing")
	require.Error(t, err)
}

func TestWithBinary(t *testing.T) {
	fake := &fakeRunner{}
	cli := New(saioGlobals(), WithRunner(fake), WithBinary("/opt/swift/bin/swift"))

	_, err := cli.Stat(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/swift/bin/swift", fake.name)
}
