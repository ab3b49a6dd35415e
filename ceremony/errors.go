package ceremony

import "github.com/cockroachdb/errors"

// Failure classes of a ceremony run. Every one of them is fatal:
// nothing is retried, the caller reports the failure and terminates.
var (
	// ErrUnsupportedPlatform is returned when the host platform has no
	// configured PKCS#11 module mapping.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMissingModule is returned when the mapped PKCS#11 module is not
	// installed on the host.
	ErrMissingModule = errors.New("PKCS#11 module not found")

	// ErrMissingPrerequisiteTool is returned when a required external tool
	// is not present on the search path.
	ErrMissingPrerequisiteTool = errors.New("prerequisite tool not found")

	// ErrOutputAlreadyExists is returned when a key file from a previous
	// run is present; the ceremony never overwrites ceremony products.
	ErrOutputAlreadyExists = errors.New("output already exists")
)
