package ceremony

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Algorithm selects the key generation algorithm for the whole ceremony.
type Algorithm string

// Supported algorithms
const (
	P256 Algorithm = "p256"
	P384 Algorithm = "p384"
)

// keyTypes maps an algorithm to the key-type specification understood by
// the key management tool.
var keyTypes = map[Algorithm]string{
	P256: "EC:prime256v1",
	P384: "EC:secp384r1",
}

// ParseAlgorithm parses the algorithm selector from user input.
func ParseAlgorithm(val string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(val))
	if _, ok := keyTypes[a]; !ok {
		return "", errors.Errorf("unsupported algorithm: %q", val)
	}
	return a, nil
}

// KeyType returns the key-type argument for the key management tool.
func (a Algorithm) KeyType() string {
	return keyTypes[a]
}

// KeyRole names a logical purpose of a generated keypair.
//
// Role order is significant: the slot id of a role is the configured base
// slot id plus the role's position, so roles must be kept in a stable,
// ordered list rather than a map.
type KeyRole struct {
	Name string `json:"Name" yaml:"name"`
}

// RawFileName returns the file name holding the public key in the device's
// native binary encoding.
func (r KeyRole) RawFileName(serial string) string {
	return fmt.Sprintf("%s_%s_pubkey.pub", serial, r.Name)
}

// PEMFileName returns the file name holding the public key in the portable
// PEM encoding.
func (r KeyRole) PEMFileName(serial string) string {
	return fmt.Sprintf("%s_%s_pubkey.pem", serial, r.Name)
}

// Ceremony defaults
const (
	// DefaultOutputRoot is the folder holding per device ceremony products.
	DefaultOutputRoot = "ceremony-products"

	// DefaultBaseSlotID sits above the slot ids populated on factory fresh
	// devices, so generated keys never collide with preloaded objects.
	DefaultBaseSlotID uint = 12
)

// DefaultRoles lists the key roles provisioned by a ceremony, in slot order.
var DefaultRoles = []KeyRole{
	{Name: "root"},
	{Name: "targets"},
}

// Config allows a ceremony to override the compiled defaults.
// The zero value, and a nil *Config, behave as the defaults.
type Config struct {
	// OutputRoot is the folder holding per device output folders.
	OutputRoot string `json:"OutputRoot" yaml:"output_root"`
	// BaseSlotID is the slot id assigned to the first role.
	BaseSlotID *uint `json:"BaseSlotID" yaml:"base_slot_id"`
	// Module overrides platform based PKCS#11 module resolution.
	Module string `json:"Module" yaml:"module"`
	// Roles overrides the provisioned key roles; order determines slot ids.
	Roles []KeyRole `json:"Roles" yaml:"roles"`
}

// LoadConfig loads ceremony configuration from a YAML or JSON file,
// chosen by the file extension.
func LoadConfig(filename string) (*Config, error) {
	cfr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer cfr.Close()

	cfg := new(Config)
	if strings.HasSuffix(filename, ".json") {
		err = json.NewDecoder(cfr).Decode(cfg)
	} else {
		err = yaml.NewDecoder(cfr).Decode(cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}

	return cfg, nil
}

func (c *Config) outputRoot() string {
	if c == nil || c.OutputRoot == "" {
		return DefaultOutputRoot
	}
	return c.OutputRoot
}

func (c *Config) baseSlotID() uint {
	if c == nil || c.BaseSlotID == nil {
		return DefaultBaseSlotID
	}
	return *c.BaseSlotID
}

func (c *Config) module() string {
	if c == nil {
		return ""
	}
	return c.Module
}

func (c *Config) roles() []KeyRole {
	if c == nil || len(c.Roles) == 0 {
		return DefaultRoles
	}
	return c.Roles
}
