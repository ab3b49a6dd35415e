package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/xlog"
	"github.com/nealmcb/psf-tuf-runbook/ceremony"
	"github.com/nealmcb/psf-tuf-runbook/exectool"
	"github.com/nealmcb/psf-tuf-runbook/x/ctl"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var logger = xlog.NewPackageLogger("github.com/nealmcb/psf-tuf-runbook", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version  ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`
	Cfg      string          `help:"Location of ceremony config file (optional)" type:"path"`
	Debug    bool            `short:"D" help:"Enable debug mode"`
	LogLevel string          `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	// test hooks
	secrets  ceremony.SecretProvider
	findTool ceremony.ToolFinder
	module   ceremony.ModuleResolver

	cfg       *ceremony.Config
	cfgLoaded bool
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// AfterApply hook loads config
func (c *Cli) AfterApply(app *kong.Kong, vars kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value interface{}) error {
	return ctl.WriteJSON(c.Writer(), value)
}

// Config loads the optional ceremony config file; nil means defaults.
func (c *Cli) Config() (*ceremony.Config, error) {
	if c.cfgLoaded {
		return c.cfg, nil
	}
	if c.Cfg != "" {
		cfg, err := ceremony.LoadConfig(c.Cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to load ceremony config: %s", c.Cfg)
		}
		c.cfg = cfg
	}
	c.cfgLoaded = true
	return c.cfg, nil
}

// FindTool returns the external tool resolver
func (c *Cli) FindTool() ceremony.ToolFinder {
	if c.findTool != nil {
		return c.findTool
	}
	return func(name string) (ceremony.Runner, error) {
		return exectool.Find(name)
	}
}

// ModuleResolver returns the module resolver override, or nil for the
// platform default.
func (c *Cli) ModuleResolver() ceremony.ModuleResolver {
	return c.module
}

// Secrets returns the provider for the operator PIN. The pin flag may hold
// the literal PIN, or `file:<path>` to read it from a file; when empty the
// PIN is prompted interactively without echo.
func (c *Cli) Secrets(pin string) ceremony.SecretProvider {
	if c.secrets != nil {
		return c.secrets
	}

	if strings.HasPrefix(pin, "file:") {
		pinfile := pin[5:]
		return ceremony.SecretFunc(func(string) (string, error) {
			pb, err := os.ReadFile(pinfile)
			if err != nil {
				return "", errors.WithMessagef(err, "unable to load PIN file: %s", pinfile)
			}
			return strings.TrimSpace(string(pb)), nil
		})
	}
	if pin != "" {
		logger.KV(xlog.WARNING, "reason", "pin_on_command_line")
		return ceremony.SecretFunc(func(string) (string, error) {
			return pin, nil
		})
	}

	return ceremony.SecretFunc(func(prompt string) (string, error) {
		return c.promptSecret(prompt)
	})
}

// promptSecret reads the secret from the terminal without echo; when the
// input is not a terminal it falls back to reading a line.
func (c *Cli) promptSecret(prompt string) (string, error) {
	fmt.Fprint(c.ErrWriter(), prompt)

	if f, ok := c.Reader().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pb, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.ErrWriter())
		if err != nil {
			return "", errors.WithStack(err)
		}
		return string(pb), nil
	}

	line, err := bufio.NewReader(c.Reader()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.WithStack(err)
	}
	return strings.TrimSpace(line), nil
}
