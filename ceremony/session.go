package ceremony

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nealmcb/psf-tuf-runbook/exectool"
	"github.com/nealmcb/psf-tuf-runbook/x/fileutil"
)

// External collaborators driven by the ceremony.
const (
	// KeyManagementTool generates keypairs on the device and dumps
	// public key objects.
	KeyManagementTool = "pkcs11-tool"
	// ConversionTool converts raw public keys to the portable encoding.
	ConversionTool = "openssl"
)

// Runner runs an external tool to completion.
// A non zero exit is returned as *exectool.Error.
type Runner interface {
	Name() string
	Run(args ...string) error
}

// ToolFinder resolves an executable name on the search path.
type ToolFinder func(name string) (Runner, error)

// SecretProvider supplies the operator PIN. Implementations must not echo
// or log the secret.
type SecretProvider interface {
	Secret(prompt string) (string, error)
}

// SecretFunc adapts a function to SecretProvider.
type SecretFunc func(prompt string) (string, error)

// Secret implements SecretProvider
func (f SecretFunc) Secret(prompt string) (string, error) {
	return f(prompt)
}

// Session holds everything the orchestrator needs for one attended run
// against a single device.
type Session struct {
	Serial    string
	Algo      Algorithm
	OutputDir string
	Pin       string

	KeyTool     Runner
	ConvertTool Runner
	Module      ModuleResolver

	cfg *Config
}

// SessionParams describes how to set up a ceremony session.
type SessionParams struct {
	// Serial is the device serial number; used as path component and
	// file name prefix.
	Serial string
	// Algo is the key generation algorithm for all roles.
	Algo Algorithm
	// Cfg is the optional ceremony configuration; nil means defaults.
	Cfg *Config
	// Secrets supplies the operator PIN, prompted once per session.
	Secrets SecretProvider
	// FindTool resolves external tools; defaults to exectool.Find.
	FindTool ToolFinder
	// Module resolves the PKCS#11 module; defaults to HostResolver(Cfg).
	Module ModuleResolver
}

// NewSession validates prerequisites, prepares the per device output folder
// and collects the operator PIN. Any failure here is fatal to the ceremony
// before the first device operation.
func NewSession(p SessionParams) (*Session, error) {
	if p.Serial == "" {
		return nil, errors.New("device serial is required")
	}
	if p.Secrets == nil {
		return nil, errors.New("secret provider is required")
	}

	find := p.FindTool
	if find == nil {
		find = func(name string) (Runner, error) {
			return exectool.Find(name)
		}
	}

	keyTool, err := find(KeyManagementTool)
	if err != nil {
		logger.KV(xlog.ERROR, "tool", KeyManagementTool, "err", err.Error())
		return nil, errors.WithMessagef(ErrMissingPrerequisiteTool, "%s", KeyManagementTool)
	}
	convertTool, err := find(ConversionTool)
	if err != nil {
		logger.KV(xlog.ERROR, "tool", ConversionTool, "err", err.Error())
		return nil, errors.WithMessagef(ErrMissingPrerequisiteTool, "%s", ConversionTool)
	}

	module := p.Module
	if module == nil {
		module = HostResolver(p.Cfg)
	}

	outDir := filepath.Join(p.Cfg.outputRoot(), p.Serial)
	if err := fileutil.CreateFolder(outDir); err != nil {
		return nil, errors.WithMessagef(err, "failed to create output folder: %s", outDir)
	}
	logger.KV(xlog.INFO, "serial", p.Serial, "output", outDir)

	pin, err := p.Secrets.Secret("Enter the operator PIN: ")
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read operator PIN")
	}
	if pin == "" {
		return nil, errors.New("operator PIN must not be empty")
	}

	return &Session{
		Serial:      p.Serial,
		Algo:        p.Algo,
		OutputDir:   outDir,
		Pin:         pin,
		KeyTool:     keyTool,
		ConvertTool: convertTool,
		Module:      module,
		cfg:         p.Cfg,
	}, nil
}

// Preflight validates the PKCS#11 module and the external tools without
// touching the device or prompting for the PIN. It returns the resolved
// module path.
func Preflight(cfg *Config, find ToolFinder) (string, error) {
	module, err := HostResolver(cfg)()
	if err != nil {
		return "", err
	}

	if find == nil {
		find = func(name string) (Runner, error) {
			return exectool.Find(name)
		}
	}
	for _, name := range []string{KeyManagementTool, ConversionTool} {
		if _, err := find(name); err != nil {
			logger.KV(xlog.ERROR, "tool", name, "err", err.Error())
			return "", errors.WithMessagef(ErrMissingPrerequisiteTool, "%s", name)
		}
	}

	return module, nil
}
