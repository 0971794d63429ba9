// Package sqlcmd runs scripts and backup primitives through the sqlcmd command-line client.
package sqlcmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultPath is the client looked up on PATH when none is configured.
const DefaultPath = "sqlcmd"

// unknownSeverity is assigned to stderr lines that carry no message header.
const unknownSeverity = 16

var messageHeader = regexp.MustCompile(`^Msg \d+, Level (\d+),`)

// Options configures a Backend.
type Options struct {
	Path        string
	Connection  domain.Connection
	Compression bool
}

// Backend implements ports.SQLBackend by spawning sqlcmd once per call.
type Backend struct {
	opts Options
}

// New creates a Backend.
func New(opts Options) *Backend {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	return &Backend{opts: opts}
}

// Exec implements ports.SQLBackend.
func (b *Backend) Exec(ctx context.Context, req domain.SQLRequest, onLine func(domain.OutputLine)) (domain.ExecResult, error) {
	var extra []string
	if req.Database != "" {
		extra = append(extra, "-d", req.Database)
	}
	return b.run(ctx, req.Script, req.Params, extra, onLine)
}

// arguments builds the command line. Connection flags come first, then extra, then variables.
func (b *Backend) arguments(params map[string]string, extra []string) []string {
	conn := b.opts.Connection
	args := []string{"-b", "-r", "1", "-S", conn.Server}
	if conn.User != "" {
		args = append(args, "-U", conn.User, "-P", conn.Password)
	} else {
		args = append(args, "-E")
	}
	args = append(args, extra...)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		args = append(args, "-v", name+`="`+strings.ReplaceAll(params[name], `"`, `""`)+`"`)
	}
	return args
}

func (b *Backend) run(
	ctx context.Context,
	script string,
	params map[string]string,
	extra []string,
	onLine func(domain.OutputLine),
) (domain.ExecResult, error) {
	//nolint:gosec // the client path and arguments come from user configuration
	cmd := exec.CommandContext(ctx, b.opts.Path, b.arguments(params, extra)...)
	cmd.Stdin = strings.NewReader(script + "\nGO\nexit\n")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.ExecResult{}, zerr.Wrap(err, domain.ErrSQLCommandFailed.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.ExecResult{}, zerr.Wrap(err, domain.ErrSQLCommandFailed.Error())
	}

	if err := cmd.Start(); err != nil {
		return domain.ExecResult{}, zerr.With(zerr.Wrap(err, domain.ErrSQLCommandFailed.Error()), "path", b.opts.Path)
	}

	c := &collector{onLine: onLine}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.scan(stdout, domain.StreamStdout)
	}()
	go func() {
		defer wg.Done()
		c.scan(stderr, domain.StreamStderr)
	}()
	wg.Wait()

	result := domain.ExecResult{MaxSeverity: c.maxSeverity}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, zerr.With(zerr.Wrap(err, domain.ErrSQLCommandFailed.Error()), "path", b.opts.Path)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

// collector serializes lines from both streams and tracks the highest severity.
type collector struct {
	mu          sync.Mutex
	onLine      func(domain.OutputLine)
	maxSeverity int
}

func (c *collector) scan(r io.Reader, stream domain.Stream) {
	reader := bufio.NewReader(r)

	// The body of a message inherits the severity of its header line.
	current := -1
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
			severity := 0
			if m := messageHeader.FindStringSubmatch(text); m != nil {
				severity, _ = strconv.Atoi(m[1])
				current = severity
			} else if stream == domain.StreamStderr {
				severity = unknownSeverity
				if current >= 0 {
					severity = current
					current = -1
				}
			}
			c.emit(domain.OutputLine{Stream: stream, Text: text, Severity: severity})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && stream == domain.StreamStderr {
				c.emit(domain.OutputLine{Stream: stream, Text: "failed to read sqlcmd output: " + err.Error(), Severity: unknownSeverity})
			}
			_, _ = io.Copy(io.Discard, r)
			return
		}
	}
}

func (c *collector) emit(line domain.OutputLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSeverity = max(c.maxSeverity, line.Severity)
	if c.onLine != nil {
		c.onLine(line)
	}
}
