package build

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hermitcli/hermit/pkg/domain/model"
)

// Runner cross-compiles release binaries by invoking the build toolchain
// as a subprocess, one invocation per matrix target.
type Runner struct {
	command string
	args    []string
	pkg     string
}

// Option is a functional option for Runner configuration
type Option func(*Runner)

// WithCommand overrides the build command and its leading arguments.
func WithCommand(command string, args ...string) Option {
	return func(r *Runner) {
		r.command = command
		r.args = args
	}
}

// WithPackage sets the package path passed to the build command.
func WithPackage(pkg string) Option {
	return func(r *Runner) {
		r.pkg = pkg
	}
}

// NewRunner creates a Runner with release-mode defaults.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		command: "go",
		args:    []string{"build", "-trimpath", "-ldflags", "-s -w"},
		pkg:     ".",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Verify checks the build toolchain is available on PATH.
func (r *Runner) Verify(ctx context.Context) error {
	path, err := exec.LookPath(r.command)
	if err != nil {
		return goerr.Wrap(err, "build toolchain not found", goerr.V("command", r.command))
	}
	ctxlog.From(ctx).Debug("build toolchain available", "command", r.command, "path", path)
	return nil
}

// Build compiles srcDir for the target, writing the binary to outPath.
// A non-zero exit fails only the leg that invoked it.
func (r *Runner) Build(ctx context.Context, srcDir string, target model.Target, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create build output directory", goerr.V("path", filepath.Dir(outPath)))
	}

	args := append(append([]string{}, r.args...), "-o", outPath, r.pkg)
	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = srcDir
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=0",
		"GOOS="+target.OS,
		"GOARCH="+target.Arch,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return goerr.Wrap(err, "build command failed",
			goerr.V("command", r.command),
			goerr.V("triple", target.Triple),
			goerr.V("output", strings.TrimSpace(string(out))),
		)
	}

	if _, err := os.Stat(outPath); err != nil {
		return goerr.Wrap(err, "build produced no binary", goerr.V("path", outPath))
	}
	return nil
}
