package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGracePeriod is how long Shutdown waits after signalling children
// before killing them.
const DefaultGracePeriod = 5 * time.Second

// Exit describes how a child process ended.
type Exit struct {
	PID      int      `json:"pid"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Err      string   `json:"error,omitempty"`
}

// Process is a child started by a Supervisor.
type Process struct {
	PID  int
	Args []string

	cmd  *exec.Cmd
	done chan struct{}
	exit Exit
}

// Done is closed when the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exit returns the exit record. It is valid after Done is closed.
func (p *Process) Exit() Exit {
	return p.exit
}

// Supervisor starts child processes and tracks them until they exit.
type Supervisor struct {
	binary string
	env    []string
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger

	mu      sync.Mutex
	running map[int]*Process
	exits   []Exit
	wg      sync.WaitGroup
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithEnv appends variables to the children's environment.
func WithEnv(env ...string) Option {
	return func(s *Supervisor) { s.env = append(s.env, env...) }
}

// WithOutput sets the children's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// NewSupervisor creates a Supervisor that runs binary. Children inherit the
// current stdout and stderr unless WithOutput says otherwise.
func NewSupervisor(binary string, logger zerolog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		binary:  binary,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logger,
		running: make(map[int]*Process),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches binary with args.
func (s *Supervisor) Start(args ...string) (*Process, error) {
	cmd := exec.Command(s.binary, args...)
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %v: %w", args, err)
	}

	p := &Process{PID: cmd.Process.Pid, Args: args, cmd: cmd, done: make(chan struct{})}
	s.mu.Lock()
	s.running[p.PID] = p
	s.mu.Unlock()
	s.logger.Info().Int("pid", p.PID).Strs("args", args).Msg("tool started")

	s.wg.Add(1)
	go s.reap(p)
	return p, nil
}

func (s *Supervisor) reap(p *Process) {
	defer s.wg.Done()
	err := p.cmd.Wait()

	p.exit = Exit{PID: p.PID, Args: p.Args, ExitCode: p.cmd.ProcessState.ExitCode()}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.exit.Err = err.Error()
	} else if err != nil {
		p.exit.Err = exitErr.String()
	}

	s.mu.Lock()
	delete(s.running, p.PID)
	s.exits = append(s.exits, p.exit)
	s.mu.Unlock()
	close(p.done)

	s.logger.Info().Int("pid", p.PID).Int("exit_code", p.exit.ExitCode).Msg("tool exited")
}

// Running returns the PIDs of children that have not exited, sorted.
func (s *Supervisor) Running() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pids := make([]int, 0, len(s.running))
	for pid := range s.running {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Wait blocks until every child has exited or ctx is done. It returns the
// exits recorded so far.
func (s *Supervisor) Wait(ctx context.Context) ([]Exit, error) {
	all := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(all)
	}()
	select {
	case <-all:
		return s.Exits(), nil
	case <-ctx.Done():
		return s.Exits(), ctx.Err()
	}
}

// Exits returns the exit records in the order the children ended.
func (s *Supervisor) Exits() []Exit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exit(nil), s.exits...)
}

// Shutdown asks every running child to terminate, waits up to grace, then
// kills whatever is left and waits for it.
func (s *Supervisor) Shutdown(grace time.Duration) []Exit {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	s.mu.Lock()
	procs := make([]*Process, 0, len(s.running))
	for _, p := range s.running {
		procs = append(procs, p)
	}
	s.mu.Unlock()

	for _, p := range procs {
		if err := terminate(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.logger.Warn().Err(err).Int("pid", p.PID).Msg("failed to signal tool")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if _, err := s.Wait(ctx); err != nil {
		for _, p := range procs {
			select {
			case <-p.done:
			default:
				s.logger.Warn().Int("pid", p.PID).Msg("tool did not stop, killing")
				_ = p.cmd.Process.Kill()
			}
		}
		s.wg.Wait()
	}
	return s.Exits()
}
