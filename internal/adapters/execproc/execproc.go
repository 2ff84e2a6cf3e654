// Package execproc provides opener and launcher adapters using exec.Command.
package execproc

import (
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// CommandFunc builds the command to start. Tests swap it to observe calls.
type CommandFunc func(name string, args ...string) *exec.Cmd

// ExecProc implements ports.Opener and ports.Launcher using exec.Command.
// Children are started and released; their exit status is never collected.
type ExecProc struct {
	command CommandFunc
	log     zerolog.Logger
}

// Option configures an ExecProc.
type Option func(*ExecProc)

// WithCommand replaces exec.Command.
func WithCommand(fn CommandFunc) Option {
	return func(p *ExecProc) {
		p.command = fn
	}
}

// WithLogger sets the logger for spawned processes.
func WithLogger(l zerolog.Logger) Option {
	return func(p *ExecProc) {
		p.log = l
	}
}

// New creates a new ExecProc adapter.
func New(opts ...Option) *ExecProc {
	p := &ExecProc{command: exec.Command, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open hands target (a URL or directory) to the platform default handler.
func (p *ExecProc) Open(target string) error {
	if strings.TrimSpace(target) == "" {
		return apperr.New(apperr.InvalidName, "nothing to open")
	}
	name, args := openCommand(target)
	cmd := p.command(name, args...)
	return p.start(cmd, target)
}

// Launch starts executable in workDir. args is split on whitespace; quoting
// is not interpreted.
func (p *ExecProc) Launch(executable, workDir, args string) error {
	cmd := p.command(executable, strings.Fields(args)...)
	cmd.Dir = workDir
	return p.start(cmd, executable)
}

func (p *ExecProc) start(cmd *exec.Cmd, target string) error {
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return apperr.Wrapf(err, apperr.LaunchFailed, "starting %s", cmd.Path).WithPath(target)
	}
	p.log.Info().Str("cmd", cmd.Path).Strs("args", cmd.Args[1:]).Int("pid", cmd.Process.Pid).Msg("started process")
	_ = cmd.Process.Release() // Fire and forget; the child outlives us
	return nil
}

// Compile-time checks that ExecProc implements the collaborator ports.
var (
	_ ports.Opener   = (*ExecProc)(nil)
	_ ports.Launcher = (*ExecProc)(nil)
)
