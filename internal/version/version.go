// Package version provides the build version of the tool.
package version

import "fmt"

var (
	major = 0
	minor = 9

	// commit is overridden at build time via ldflags.
	commit = "dev"
)

// Version describes a released build.
type Version struct {
	Major  int
	Minor  int
	Commit string
}

// Current returns the version of the running binary.
func Current() Version {
	return Version{
		Major:  major,
		Minor:  minor,
		Commit: commit,
	}
}

// String returns the version in the major.minor-commit form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d-%s", v.Major, v.Minor, v.Commit)
}
