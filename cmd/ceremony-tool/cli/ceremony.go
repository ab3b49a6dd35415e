package cli

import (
	"github.com/nealmcb/psf-tuf-runbook/ceremony"
)

// GenerateCmd runs the key generation ceremony for one device
type GenerateCmd struct {
	Algorithm string `required:"" help:"key algorithm: p256|p384"`
	Serial    string `required:"" help:"device serial number"`
	Out       string `help:"override the ceremony output root"`
	Pin       string `help:"operator PIN, or file:<path> to read it from a file; prompted when not set"`
}

// Run the command
func (a *GenerateCmd) Run(ctx *Cli) error {
	algo, err := ceremony.ParseAlgorithm(a.Algorithm)
	if err != nil {
		return err
	}

	cfg, err := ctx.Config()
	if err != nil {
		return err
	}
	if a.Out != "" {
		over := ceremony.Config{OutputRoot: a.Out}
		if cfg != nil {
			over = *cfg
			over.OutputRoot = a.Out
		}
		cfg = &over
	}

	sess, err := ceremony.NewSession(ceremony.SessionParams{
		Serial:   a.Serial,
		Algo:     algo,
		Cfg:      cfg,
		Secrets:  ctx.Secrets(a.Pin),
		FindTool: ctx.FindTool(),
		Module:   ctx.ModuleResolver(),
	})
	if err != nil {
		return err
	}

	products, err := ceremony.New(sess).Run()
	if err != nil {
		return err
	}

	return ctx.WriteJSON(products)
}

// CheckCmd verifies ceremony prerequisites without touching the device
type CheckCmd struct{}

// checkResult reports the outcome of a preflight check
type checkResult struct {
	Module string   `json:"Module"`
	Tools  []string `json:"Tools"`
}

// Run the command
func (a *CheckCmd) Run(ctx *Cli) error {
	cfg, err := ctx.Config()
	if err != nil {
		return err
	}

	module, err := ceremony.Preflight(cfg, ctx.FindTool())
	if err != nil {
		return err
	}

	return ctx.WriteJSON(checkResult{
		Module: module,
		Tools:  []string{ceremony.KeyManagementTool, ceremony.ConversionTool},
	})
}
