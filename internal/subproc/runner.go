// Package subproc implements the subprocess command runner (spec.md
// §4.2): options-to-argv translation, streaming stdout consumption,
// line-by-line stderr logging, timeouts, and structured error reporting.
package subproc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// PathResolver returns the executable path (or plain program name to be
// looked up on PATH) at invocation time. It stands in for the spec's
// "path: string | thunk" option.
type PathResolver func() (string, error)

// Config configures a Runner for one program.
type Config struct {
	Program  string // e.g. "git"
	Path     PathResolver
	Cwd      string
	Env      map[string]string
	Style    Style
	Timeout  time.Duration
	Logger   Logger
	Encoding encoding.Encoding
	Tracer   Tracer
}

// StdoutFunc receives one decoded chunk of stdout. Calling stop requests
// early termination: no further chunks are delivered, though the pipe is
// still drained so the child is never blocked on a full stdout buffer.
type StdoutFunc func(chunk string, stop func())

// InvokeOptions describes one invocation of the configured program.
type InvokeOptions struct {
	Opts Opts
	Args []string

	// Stdout captures decoded stdout via callback. StdoutWriter captures
	// raw bytes via io.Writer. At most one should be set; if neither is
	// set, stdout is not captured (inherited or discarded).
	Stdout       StdoutFunc
	StdoutWriter io.Writer

	// FeedStdin, if set, is invoked once with the child's stdin pipe. The
	// callback owns closing it.
	FeedStdin func(io.WriteCloser)

	// Exactly one of Exit, MakeResult, Result should be set to determine
	// the invocation's resolved value.
	Exit       func(exitCode int) (any, error)
	MakeResult func() (any, error)
	Result     any

	Cwd    string
	Env    map[string]string
	Logger Logger
}

// Invoker is the seam GitDriver/DiffDriver depend on, so tests can supply
// a fake instead of spawning real processes.
type Invoker interface {
	Invoke(opts InvokeOptions) (any, error)
}

// Runner is the concrete Invoker backed by os/exec.
type Runner struct {
	cfg Config
}

// New constructs a Runner for cfg.Program.
func New(cfg Config) *Runner {
	if cfg.Style != GNUOpt && cfg.Style != OneDash {
		cfg.Style = GNUOpt
	}
	if cfg.Logger == nil {
		cfg.Logger = NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = NopTracer{}
	}
	if cfg.Encoding == nil {
		cfg.Encoding = unicode.UTF8
	}
	return &Runner{cfg: cfg}
}

type envSource string

const (
	envSourceInvocation envSource = "invocation"
	envSourceRunner     envSource = "runner"
	envSourceProcess    envSource = "process"
)

// Invoke runs the configured program once with opts, per the resolution
// semantics in spec.md §4.2.
func (r *Runner) Invoke(opts InvokeOptions) (any, error) {
	argv, err := Render(r.cfg.Style, opts.Opts)
	if err != nil {
		return nil, err
	}
	argv = append(argv, opts.Args...)

	program, err := r.resolveProgram()
	if err != nil {
		return nil, err
	}

	dir := resolveCwd(r.cfg.Cwd, opts.Cwd)
	env, source := resolveEnv(r.cfg.Env, opts.Env)

	logger := r.cfg.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	cmd := exec.Command(program, argv...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}

	desc := Exec{Program: program, Args: argv, Dir: dir, Env: env}

	var stdinPipe io.WriteCloser
	if opts.FeedStdin != nil {
		stdinPipe, err = cmd.StdinPipe()
		if err != nil {
			return nil, casefileerr.Wrap(casefileerr.CodeSpawningFailure, "creating stdin pipe for "+progDesc(desc), err)
		}
	}

	var stdoutPipe io.ReadCloser
	capturingStdout := opts.Stdout != nil || opts.StdoutWriter != nil
	if capturingStdout {
		stdoutPipe, err = cmd.StdoutPipe()
		if err != nil {
			return nil, casefileerr.Wrap(casefileerr.CodeSpawningFailure, "creating stdout pipe for "+progDesc(desc), err)
		}
	}

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, casefileerr.Wrap(casefileerr.CodeSpawningFailure, "creating stderr pipe for "+progDesc(desc), err)
	}

	r.cfg.Tracer.OnExecute(desc)

	if err := cmd.Start(); err != nil {
		var pathErr *exec.Error
		kind := "spawning " + progDesc(desc)
		if errors.As(err, &pathErr) {
			kind += ": " + pathErr.Err.Error()
		}
		return nil, casefileerr.Wrap(casefileerr.CodeSpawningFailure, kind, err).
			WithFields(map[string]any{"program": program, "args": argv, "envSource": string(source)})
	}

	r.cfg.Tracer.OnExecuting(desc, cmd.Process.Pid)

	if opts.FeedStdin != nil {
		opts.FeedStdin(stdinPipe)
	}

	var wg sync.WaitGroup
	var loggerErr error
	var loggerErrMu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		drainStderr(stderrPipe, logger, desc, func(e error) {
			loggerErrMu.Lock()
			if loggerErr == nil {
				loggerErr = e
			}
			loggerErrMu.Unlock()
		})
	}()

	stdoutDone := make(chan struct{})
	if capturingStdout {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumeStdout(stdoutPipe, r.cfg.Encoding, opts.Stdout, opts.StdoutWriter)
			close(stdoutDone)
		}()
	} else {
		close(stdoutDone)
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		waitErr := cmd.Wait()
		<-stdoutDone // both process exit AND stdout consumer closed
		wg.Wait()

		exitCode := 0
		var exitError *exec.ExitError
		if waitErr != nil {
			if errors.As(waitErr, &exitError) {
				exitCode = exitError.ExitCode()
			} else {
				done <- outcome{nil, casefileerr.Wrap(casefileerr.CodeSpawningFailure, "waiting for "+progDesc(desc), waitErr)}
				return
			}
		}

		res, resErr := resolveOutcome(exitCode, opts, desc)
		if resErr == nil {
			loggerErrMu.Lock()
			le := loggerErr
			loggerErrMu.Unlock()
			if le != nil {
				resErr = casefileerr.Wrap(casefileerr.CodeBadOutputStream, "logger error while draining stderr of "+progDesc(desc), le)
			}
		}
		done <- outcome{res, resErr}
	}()

	if r.cfg.Timeout > 0 {
		select {
		case out := <-done:
			return out.result, out.err
		case <-time.After(r.cfg.Timeout):
			// The child is not killed: it keeps running and the goroutine
			// above will eventually finish draining it, but nobody is
			// listening on `done` anymore.
			return nil, casefileerr.New(casefileerr.CodeTimeout, "timed out waiting for "+progDesc(desc)).
				WithFields(map[string]any{"program": program, "args": argv, "envSource": string(source), "timeout": r.cfg.Timeout})
		}
	}

	out := <-done
	return out.result, out.err
}

func resolveOutcome(exitCode int, opts InvokeOptions, desc Exec) (any, error) {
	if opts.Exit != nil {
		return opts.Exit(exitCode)
	}
	if exitCode != 0 {
		return nil, casefileerr.New(casefileerr.CodeChildProcessFailure, fmt.Sprintf("%s exited with code %d", progDesc(desc), exitCode)).
			WithFields(map[string]any{"exitCode": exitCode, "program": desc.Program, "args": desc.Args})
	}
	if opts.MakeResult != nil {
		return opts.MakeResult()
	}
	return opts.Result, nil
}

func (r *Runner) resolveProgram() (string, error) {
	if r.cfg.Path != nil {
		p, err := r.cfg.Path()
		if err != nil {
			return "", casefileerr.Wrap(casefileerr.CodeSpawningFailure, "resolving path for "+r.cfg.Program, err)
		}
		if p != "" {
			return p, nil
		}
	}
	if r.cfg.Program == "" {
		return "", casefileerr.New(casefileerr.CodeSpawningFailure, "no program configured")
	}
	return r.cfg.Program, nil
}

func resolveCwd(runnerCwd, invocationCwd string) string {
	if invocationCwd != "" {
		if runnerCwd != "" && !isAbs(invocationCwd) {
			return joinPath(runnerCwd, invocationCwd)
		}
		return invocationCwd
	}
	return runnerCwd
}

func resolveEnv(runnerEnv, invocationEnv map[string]string) ([]string, envSource) {
	if invocationEnv == nil && runnerEnv == nil {
		return nil, envSourceProcess
	}
	merged := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	source := envSourceProcess
	for k, v := range runnerEnv {
		merged[k] = v
		source = envSourceRunner
	}
	for k, v := range invocationEnv {
		merged[k] = v
		source = envSourceInvocation
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out, source
}

func progDesc(e Exec) string {
	if len(e.Args) == 0 {
		return e.Program
	}
	return e.Program + " " + strings.Join(e.Args, " ")
}

func drainStderr(r io.Reader, logger Logger, desc Exec, onErr func(error)) {
	banner := "----- " + progDesc(desc) + " -----"
	bannerWritten := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !bannerWritten {
			_ = logger.Error(banner)
			bannerWritten = true
		}
		if err := logger.Error("    " + line); err != nil {
			onErr(err)
		}
	}
}

func consumeStdout(r io.Reader, enc encoding.Encoding, fn StdoutFunc, w io.Writer) {
	dec := enc.NewDecoder()
	buf := make([]byte, 32*1024)
	stopped := false
	stop := func() { stopped = true }
	var raw bytes.Buffer

	for {
		n, err := r.Read(buf)
		if n > 0 {
			raw.Write(buf[:n])
			if !stopped {
				if w != nil {
					_, _ = w.Write(buf[:n])
				} else if fn != nil {
					data := raw.Bytes()
					dst := make([]byte, len(data)*4+64)
					nDst, nSrc, _ := dec.Transform(dst, data, false)
					if nDst > 0 {
						fn(string(dst[:nDst]), stop)
					}
					remaining := append([]byte(nil), data[nSrc:]...)
					raw.Reset()
					raw.Write(remaining)
				}
			}
		}
		if err != nil {
			break
		}
	}
	if fn != nil && !stopped {
		data := raw.Bytes()
		if len(data) > 0 {
			dst := make([]byte, len(data)*4+64)
			nDst, _, _ := dec.Transform(dst, data, true)
			if nDst > 0 {
				fn(string(dst[:nDst]), stop)
			}
		}
	}
	// Drain any remaining bytes so the child is never blocked on a full
	// pipe, even after early termination.
	_, _ = io.Copy(io.Discard, r)
}

func isAbs(p string) bool { return strings.HasPrefix(p, "/") }

func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return strings.TrimRight(base, "/") + "/" + rel
}
