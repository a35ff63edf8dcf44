package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/logger"
)

// shutdownGrace is how long Close waits for a plugin process to exit
// after the shutdown request before killing it.
const shutdownGrace = 3 * time.Second

// maxResponseLine bounds a single response line from a plugin process.
const maxResponseLine = 64 << 20

// Command drives an external plugin executable. One request is written
// per line to the child's stdin and one response line is read back;
// requests are serialised, a command plugin never sees two at once.
type Command struct {
	name    string
	version string
	path    string
	args    []string

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Scanner
}

// NewCommand describes the executable without starting it. The process
// is launched by Init, i.e. at registration time.
func NewCommand(name, version, path string, args ...string) *Command {
	return &Command{name: name, version: version, path: path, args: args}
}

func (c *Command) Name() string    { return c.name }
func (c *Command) Version() string { return c.version }

// Init launches the plugin process and confirms it answers a ping.
func (c *Command) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		return nil
	}

	cmd := exec.Command(c.path, c.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening stdin of plugin %q: %w", c.name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout of plugin %q: %w", c.name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting plugin %q (%s): %w: %s",
			c.name, c.path, domain.ErrMissingDependency, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseLine)

	c.cmd = cmd
	c.stdin = stdin
	c.out = scanner

	if _, err := c.roundTripLocked(context.Background(), request{Op: opPing}); err != nil {
		c.stopLocked()
		return fmt.Errorf("plugin %q did not answer ping: %w", c.name, err)
	}
	logger.Debug("plugin process %q started (pid %d)", c.name, cmd.Process.Pid)
	return nil
}

// Close asks the process to shut down and kills it if it lingers.
func (c *Command) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil {
		return nil
	}

	req := request{ID: uuid.NewString(), Op: opShutdown}
	if line, err := json.Marshal(req); err == nil {
		_, _ = c.stdin.Write(append(line, '\n'))
	}
	_ = c.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()

	select {
	case err := <-done:
		c.cmd = nil
		return err
	case <-time.After(shutdownGrace):
		logger.Warn("plugin process %q ignored shutdown, killing it", c.name)
		_ = c.cmd.Process.Kill()
		<-done
		c.cmd = nil
		return nil
	}
}

func (c *Command) stopLocked() {
	if c.cmd == nil {
		return
	}
	_ = c.stdin.Close()
	_ = c.cmd.Process.Kill()
	_ = c.cmd.Wait()
	c.cmd = nil
}

func (c *Command) roundTrip(ctx context.Context, req request) (*domain.ExtractionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roundTripLocked(ctx, req)
}

func (c *Command) roundTripLocked(ctx context.Context, req request) (*domain.ExtractionResult, error) {
	if c.cmd == nil {
		return nil, domain.NewExtractError(domain.KindPlugin, "", c.name, "plugin process is not running")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request for plugin %q: %w", c.name, err)
	}
	if _, err := c.stdin.Write(append(line, '\n')); err != nil {
		c.stopLocked()
		return nil, domain.NewExtractError(domain.KindPlugin, "", c.name,
			fmt.Sprintf("writing to plugin process: %v", err))
	}

	type scanned struct {
		line []byte
		err  error
	}
	read := make(chan scanned, 1)
	go func() {
		if !c.out.Scan() {
			err := c.out.Err()
			if err == nil {
				err = io.EOF
			}
			read <- scanned{err: err}
			return
		}
		read <- scanned{line: append([]byte(nil), c.out.Bytes()...)}
	}()

	select {
	case <-ctx.Done():
		// The pipe is now desynchronised, restarting is the only option.
		c.stopLocked()
		return nil, ctx.Err()
	case s := <-read:
		if s.err != nil {
			c.stopLocked()
			return nil, domain.NewExtractError(domain.KindPlugin, "", c.name,
				fmt.Sprintf("reading from plugin process: %v", s.err))
		}
		var resp response
		if err := json.Unmarshal(s.line, &resp); err != nil {
			c.stopLocked()
			return nil, domain.NewExtractError(domain.KindPlugin, "", c.name,
				fmt.Sprintf("malformed response line: %v", err))
		}
		if resp.ID != req.ID {
			c.stopLocked()
			return nil, unexpectedResponse(c.name, req.ID, resp.ID)
		}
		if resp.Error != nil {
			return nil, resp.Error.toDomain("", c.name)
		}
		return resp.Result, nil
	}
}

// CommandOCR exposes a command plugin as an OCR backend.
type CommandOCR struct {
	*Command
	languages []string
}

var _ driven.OCRBackend = (*CommandOCR)(nil)

// NewCommandOCR wraps cmd as an OCR backend. An empty language list
// means every language is accepted.
func NewCommandOCR(cmd *Command, languages []string) *CommandOCR {
	return &CommandOCR{Command: cmd, languages: languages}
}

func (c *CommandOCR) ProcessImage(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error) {
	result, err := c.roundTrip(ctx, request{Op: opProcessImage, Data: image, Language: language})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, domain.NewExtractError(domain.KindPlugin, "ocr", c.name, "plugin returned no result")
	}
	return result, nil
}

func (c *CommandOCR) SupportsLanguage(language string) bool {
	if len(c.languages) == 0 {
		return true
	}
	for _, l := range c.languages {
		if l == language {
			return true
		}
	}
	return false
}

// CommandPostProcessor exposes a command plugin as a post-processor.
type CommandPostProcessor struct {
	*Command
	stage driven.ProcessingStage
}

var _ driven.PostProcessor = (*CommandPostProcessor)(nil)

// NewCommandPostProcessor wraps cmd as a post-processor running at stage.
func NewCommandPostProcessor(cmd *Command, stage driven.ProcessingStage) *CommandPostProcessor {
	return &CommandPostProcessor{Command: cmd, stage: stage}
}

func (c *CommandPostProcessor) Stage() driven.ProcessingStage { return c.stage }

func (c *CommandPostProcessor) Process(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	updated, err := c.roundTrip(ctx, request{Op: opProcess, Result: result, Config: cfg})
	if err != nil {
		return err
	}
	if updated != nil {
		*result = *updated
	}
	return nil
}

// CommandValidator exposes a command plugin as a validator.
type CommandValidator struct {
	*Command
}

var _ driven.Validator = (*CommandValidator)(nil)

// NewCommandValidator wraps cmd as a validator.
func NewCommandValidator(cmd *Command) *CommandValidator {
	return &CommandValidator{Command: cmd}
}

func (c *CommandValidator) Validate(ctx context.Context, result *domain.ExtractionResult, cfg *domain.ExtractionConfig) error {
	_, err := c.roundTrip(ctx, request{Op: opValidate, Result: result, Config: cfg})
	return err
}

// CommandExtractor exposes a command plugin as a document extractor.
type CommandExtractor struct {
	*Command
	mimes []string
}

var _ driven.DocumentExtractor = (*CommandExtractor)(nil)

// NewCommandExtractor wraps cmd as an extractor claiming mimes.
func NewCommandExtractor(cmd *Command, mimes []string) *CommandExtractor {
	return &CommandExtractor{Command: cmd, mimes: mimes}
}

func (c *CommandExtractor) SupportedMIMETypes() []string { return c.mimes }

func (c *CommandExtractor) Extract(ctx context.Context, data []byte, mimeType string, cfg *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	result, err := c.roundTrip(ctx, request{Op: opExtract, Data: data, MIMEType: mimeType, Config: cfg})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, domain.NewExtractError(domain.KindPlugin, "extract", c.name, "plugin returned no result")
	}
	return result, nil
}

// Manifest describes a command plugin in the configuration file.
type Manifest struct {
	Name      string   `toml:"name" json:"name"`
	Version   string   `toml:"version" json:"version"`
	Category  string   `toml:"category" json:"category"`
	Command   string   `toml:"command" json:"command"`
	Args      []string `toml:"args" json:"args"`
	Stage     string   `toml:"stage" json:"stage"`
	MIMETypes []string `toml:"mime_types" json:"mime_types"`
	Languages []string `toml:"languages" json:"languages"`
	Priority  int      `toml:"priority" json:"priority"`
}

// Build turns a manifest into the plugin for its category. The process
// is not started until registration initialises it.
func (m Manifest) Build() (driven.Plugin, error) {
	if m.Name == "" || m.Command == "" {
		return nil, fmt.Errorf("plugin manifest needs name and command: %w", domain.ErrInvalidInput)
	}
	version := m.Version
	if version == "" {
		version = "0.0.0"
	}
	cmd := NewCommand(m.Name, version, m.Command, m.Args...)

	switch m.Category {
	case "ocr-backend":
		return NewCommandOCR(cmd, m.Languages), nil
	case "post-processor":
		return NewCommandPostProcessor(cmd, driven.ParseStage(m.Stage)), nil
	case "validator":
		return NewCommandValidator(cmd), nil
	case "document-extractor":
		if len(m.MIMETypes) == 0 {
			return nil, fmt.Errorf("extractor manifest %q claims no mime types: %w", m.Name, domain.ErrInvalidInput)
		}
		return NewCommandExtractor(cmd, m.MIMETypes), nil
	default:
		return nil, fmt.Errorf("unknown plugin category %q: %w", m.Category, domain.ErrInvalidInput)
	}
}
