package ceremony

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nealmcb/psf-tuf-runbook/x/fileutil"
)

// defaultModules maps GOOS/GOARCH to the installed OpenSC PKCS#11 module.
var defaultModules = map[string]string{
	"linux/amd64":  "/usr/lib/x86_64-linux-gnu/opensc-pkcs11.so",
	"linux/arm64":  "/usr/lib/aarch64-linux-gnu/opensc-pkcs11.so",
	"darwin/amd64": "/usr/local/lib/opensc-pkcs11.so",
	"darwin/arm64": "/opt/homebrew/lib/opensc-pkcs11.so",
}

// ResolveModule maps a platform to the path of the installed PKCS#11
// driver module and verifies the module file is present.
func ResolveModule(goos, arch string) (string, error) {
	platform := goos + "/" + arch
	path, ok := defaultModules[platform]
	if !ok {
		return "", errors.WithMessagef(ErrUnsupportedPlatform, "%s", platform)
	}
	if err := fileutil.FileExists(path); err != nil {
		return "", errors.WithMessagef(ErrMissingModule, "%s", path)
	}
	logger.KV(xlog.DEBUG, "platform", platform, "module", path)
	return path, nil
}

// ModuleResolver returns the PKCS#11 module path for an external tool call.
type ModuleResolver func() (string, error)

// HostResolver resolves the module for the current host. The module is
// re-resolved on every call rather than cached, so a module that becomes
// unavailable mid ceremony is detected before the next device operation.
func HostResolver(cfg *Config) ModuleResolver {
	return func() (string, error) {
		if mod := cfg.module(); mod != "" {
			if err := fileutil.FileExists(mod); err != nil {
				return "", errors.WithMessagef(ErrMissingModule, "%s", mod)
			}
			return mod, nil
		}
		return ResolveModule(runtime.GOOS, runtime.GOARCH)
	}
}
