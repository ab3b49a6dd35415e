// Package ceremony orchestrates a one time key generation ceremony against
// a hardware security module.
//
// A ceremony provisions one device: for each configured key role, in order,
// it generates a keypair on the device, extracts the raw public key and
// converts it to the portable PEM encoding. The device operations are
// performed by external tools; this package resolves the platform's PKCS#11
// module, assigns deterministic slot ids and sequences the tool calls.
//
// Every failure is terminal for the whole run. Key generation mutates
// device state and cannot be rolled back here, so instead of retrying or
// skipping, the ceremony stops and leaves the decision to the operator.
package ceremony

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nealmcb/psf-tuf-runbook/metricskey"
	"github.com/nealmcb/psf-tuf-runbook/x/fileutil"
)

var logger = xlog.NewPackageLogger("github.com/nealmcb/psf-tuf-runbook", "ceremony")

// Product describes the files produced for one key role.
type Product struct {
	Role    string `json:"Role"`
	SlotID  uint   `json:"SlotID"`
	RawPath string `json:"RawPath"`
	PEMPath string `json:"PEMPath"`
}

// Ceremony drives the key generation sequence for one device.
type Ceremony struct {
	session *Session
	roles   []KeyRole
	base    uint
}

// New creates a Ceremony over the session, using the session's configured
// key roles and base slot id.
func New(s *Session) *Ceremony {
	return &Ceremony{
		session: s,
		roles:   s.cfg.roles(),
		base:    s.cfg.baseSlotID(),
	}
}

// Run executes the ceremony. Roles are processed in configured order; the
// role at position i is assigned slot id base+i. A role is only started
// after the previous role completed all three steps, and the first failure
// aborts the remaining roles.
func (c *Ceremony) Run() ([]Product, error) {
	products := make([]Product, 0, len(c.roles))
	for i, role := range c.roles {
		slot := c.base + uint(i)
		prod, err := c.provision(role, slot)
		if err != nil {
			return nil, errors.WithMessagef(err, "role %q", role.Name)
		}
		products = append(products, *prod)
	}
	return products, nil
}

// provision runs the check, generate, extract and convert steps for one role.
func (c *Ceremony) provision(role KeyRole, slot uint) (*Product, error) {
	s := c.session
	rawPath := filepath.Join(s.OutputDir, role.RawFileName(s.Serial))
	pemPath := filepath.Join(s.OutputDir, role.PEMFileName(s.Serial))

	// A ceremony product from an earlier run must never be overwritten:
	// it could mask a failed generation or cause key confusion. The check
	// runs before any device operation for the role.
	for _, out := range []string{rawPath, pemPath} {
		if fileutil.FileExists(out) == nil {
			return nil, errors.WithMessagef(ErrOutputAlreadyExists, "%s", out)
		}
	}
	logger.KV(xlog.DEBUG, "role", role.Name, "slot", slot, "status", "checked")

	if err := c.generate(role, slot); err != nil {
		return nil, errors.WithMessage(err, "keypair generation failed")
	}
	logger.KV(xlog.INFO, "role", role.Name, "slot", slot, "status", "generated")

	if err := c.extract(role, slot, rawPath); err != nil {
		return nil, errors.WithMessage(err, "public key extraction failed")
	}
	logger.KV(xlog.INFO, "role", role.Name, "slot", slot, "status", "extracted")

	if err := c.convert(role, rawPath, pemPath); err != nil {
		return nil, errors.WithMessage(err, "public key conversion failed")
	}
	logger.KV(xlog.NOTICE, "role", role.Name, "slot", slot, "status", "done",
		"pub", rawPath, "pem", pemPath)

	return &Product{
		Role:    role.Name,
		SlotID:  slot,
		RawPath: rawPath,
		PEMPath: pemPath,
	}, nil
}

// generate creates the keypair on the device. This mutates device state
// and is not reversible by this tool.
func (c *Ceremony) generate(role KeyRole, slot uint) error {
	defer metricskey.PerfCeremonyStep.MeasureSince(time.Now(), role.Name, "generate")

	s := c.session
	module, err := s.Module()
	if err != nil {
		return err
	}
	return s.KeyTool.Run(
		"--module", module,
		"--login", "--pin", s.Pin,
		"--keypairgen",
		"--key-type", s.Algo.KeyType(),
		"--id", strconv.FormatUint(uint64(slot), 10),
		"--label", role.Name,
	)
}

// extract dumps the public half of the generated keypair in the device's
// native binary encoding.
func (c *Ceremony) extract(role KeyRole, slot uint, rawPath string) error {
	defer metricskey.PerfCeremonyStep.MeasureSince(time.Now(), role.Name, "extract")

	s := c.session
	module, err := s.Module()
	if err != nil {
		return err
	}
	return s.KeyTool.Run(
		"--module", module,
		"--login", "--pin", s.Pin,
		"--read-object",
		"--type", "pubkey",
		"--id", strconv.FormatUint(uint64(slot), 10),
		"-o", rawPath,
	)
}

// convert transforms the raw public key into the portable PEM encoding.
func (c *Ceremony) convert(role KeyRole, rawPath, pemPath string) error {
	defer metricskey.PerfCeremonyStep.MeasureSince(time.Now(), role.Name, "convert")

	return c.session.ConvertTool.Run(
		"ec",
		"-inform", "DER",
		"-pubin",
		"-in", rawPath,
		"-pubout",
		"-out", pemPath,
	)
}
