// Package swiftcli shells out to the python-swiftclient "swift" command.
// Some harness checks need to prove the deployment works through the
// stock CLI, not only through this module's HTTP client, so the package
// builds argv vectors from typed options and runs the real binary.
package swiftcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// DefaultBinary is the CLI entrypoint on PATH
const DefaultBinary = "swift"

// GlobalOptions map onto the CLI's global flags, shared by every
// subcommand.
type GlobalOptions struct {
	// AuthURL is the tempauth endpoint, e.g. http://127.0.0.1:8080/auth/v1.0
	AuthURL string

	User string
	Key  string

	// AuthVersion defaults to the CLI's own default when empty
	AuthVersion string

	Retries int
	Verbose bool
}

// globalFlag pairs an option accessor with its CLI flag. Keeping the map
// explicit makes the argv deterministic and easy to extend.
var globalFlags = map[string]func(GlobalOptions) []string{
	"--auth": func(o GlobalOptions) []string {
		if o.AuthURL == "" {
			return nil
		}
		return []string{o.AuthURL}
	},
	"--user": func(o GlobalOptions) []string {
		if o.User == "" {
			return nil
		}
		return []string{o.User}
	},
	"--key": func(o GlobalOptions) []string {
		if o.Key == "" {
			return nil
		}
		return []string{o.Key}
	},
	"--auth-version": func(o GlobalOptions) []string {
		if o.AuthVersion == "" {
			return nil
		}
		return []string{o.AuthVersion}
	},
	"--retries": func(o GlobalOptions) []string {
		if o.Retries <= 0 {
			return nil
		}
		return []string{strconv.Itoa(o.Retries)}
	},
	"--verbose": func(o GlobalOptions) []string {
		if !o.Verbose {
			return nil
		}
		return []string{}
	},
}

// Runner executes an argv and returns its stdout. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("running %s: %w", name, err)
		}
		return "", fmt.Errorf("running %s: %w: %s", name, err, msg)
	}
	return stdout.String(), nil
}

// CLI runs swift subcommands with a fixed set of global options
type CLI struct {
	binary string
	global GlobalOptions
	runner Runner
}

// Option customizes a CLI
type Option func(*CLI)

// WithBinary points at a non-default swift executable
func WithBinary(path string) Option {
	return func(c *CLI) {
		c.binary = path
	}
}

// WithRunner substitutes the process runner, used by tests
func WithRunner(r Runner) Option {
	return func(c *CLI) {
		c.runner = r
	}
}

// New creates a CLI wrapper with the given global options
func New(global GlobalOptions, opts ...Option) *CLI {
	c := &CLI{
		binary: DefaultBinary,
		global: global,
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// argv assembles global flags, the subcommand and its arguments. Global
// flags come out in sorted order so the vector is stable.
func (c *CLI) argv(subcommand string, args ...string) []string {
	flags := make([]string, 0, len(globalFlags))
	for flag := range globalFlags {
		flags = append(flags, flag)
	}
	sort.Strings(flags)

	var out []string
	for _, flag := range flags {
		values := globalFlags[flag](c.global)
		if values == nil {
			continue
		}
		out = append(out, flag)
		out = append(out, values...)
	}

	out = append(out, subcommand)
	return append(out, args...)
}

func (c *CLI) run(ctx context.Context, subcommand string, args ...string) (string, error) {
	return c.runner.Run(ctx, c.binary, c.argv(subcommand, args...)...)
}

// UploadOptions tune the upload subcommand
type UploadOptions struct {
	// ObjectName renames the uploaded file inside the container
	ObjectName string

	// SegmentSize splits large files into segments of this many bytes
	SegmentSize int64
}

// Upload pushes local files into a container
func (c *CLI) Upload(ctx context.Context, container string, paths []string, opts UploadOptions) (string, error) {
	args := []string{container}
	args = append(args, paths...)
	if opts.ObjectName != "" {
		args = append(args, "--object-name", opts.ObjectName)
	}
	if opts.SegmentSize > 0 {
		args = append(args, "--segment-size", strconv.FormatInt(opts.SegmentSize, 10))
	}
	return c.run(ctx, "upload", args...)
}

// DownloadOptions tune the download subcommand
type DownloadOptions struct {
	// Output writes the object to this path instead of its own name
	Output string
}

// Download fetches an object from a container
func (c *CLI) Download(ctx context.Context, container, object string, opts DownloadOptions) (string, error) {
	args := []string{container, object}
	if opts.Output != "" {
		args = append(args, "--output", opts.Output)
	}
	return c.run(ctx, "download", args...)
}

// Delete removes objects, or the whole container when no objects are named
func (c *CLI) Delete(ctx context.Context, container string, objects ...string) (string, error) {
	args := append([]string{container}, objects...)
	return c.run(ctx, "delete", args...)
}

// List lists containers, or a container's objects when one is named.
// Returns one name per line, the CLI's plain output format.
func (c *CLI) List(ctx context.Context, container string) ([]string, error) {
	args := []string{}
	if container != "" {
		args = append(args, container)
	}
	out, err := c.run(ctx, "list", args...)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Stat shows account, container or object details. Empty arguments walk
// up: Stat(ctx, "", "") stats the account.
func (c *CLI) Stat(ctx context.Context, container, object string) (string, error) {
	var args []string
	if container != "" {
		args = append(args, container)
		if object != "" {
			args = append(args, object)
		}
	}
	return c.run(ctx, "stat", args...)
}

// Post updates metadata on the account, a container or an object. Each
// meta entry becomes a --meta Name:Value flag.
func (c *CLI) Post(ctx context.Context, container, object string, meta map[string]string) (string, error) {
	var args []string
	if container != "" {
		args = append(args, container)
		if object != "" {
			args = append(args, object)
		}
	}

	names := make([]string, 0, len(meta))
	for name := range meta {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "--meta", name+":"+meta[name])
	}
	return c.run(ctx, "post", args...)
}
