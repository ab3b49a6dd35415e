package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type cliSuite struct {
	testSuite
}

func TestCliSuite(t *testing.T) {
	suite.Run(t, new(cliSuite))
}

func (s *cliSuite) TestSecretsFromFile() {
	pinfile := filepath.Join(s.T().TempDir(), "pin.txt")
	err := os.WriteFile(pinfile, []byte("123456\n"), 0600)
	s.Require().NoError(err)

	prov := s.ctl.Secrets("file:" + pinfile)
	pin, err := prov.Secret("PIN: ")
	s.Require().NoError(err)
	s.Equal("123456", pin)

	prov = s.ctl.Secrets("file:" + pinfile + ".missing")
	_, err = prov.Secret("PIN: ")
	s.Require().Error(err)
	s.Contains(err.Error(), "unable to load PIN file")
}

func (s *cliSuite) TestSecretsLiteral() {
	prov := s.ctl.Secrets("654321")
	pin, err := prov.Secret("PIN: ")
	s.Require().NoError(err)
	s.Equal("654321", pin)
}

func (s *cliSuite) TestSecretsPrompt() {
	s.ctl.WithReader(strings.NewReader("987654\n"))

	prov := s.ctl.Secrets("")
	pin, err := prov.Secret("Enter the operator PIN: ")
	s.Require().NoError(err)
	s.Equal("987654", pin)

	// the prompt goes to the error stream, the PIN is not echoed
	s.HasText("Enter the operator PIN: ")
	s.NotContains(s.Out.String(), "987654")
}

func Test_CliWriters(t *testing.T) {
	cl := &Cli{}
	assert.Equal(t, os.Stdout, cl.Writer())
	assert.Equal(t, os.Stderr, cl.ErrWriter())
	assert.Equal(t, os.Stdin, cl.Reader())
}

func Test_CliConfig(t *testing.T) {
	cl := &Cli{}
	cfg, err := cl.Config()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cl = &Cli{Cfg: "no-such-config.yaml"}
	_, err = cl.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to load ceremony config")
}
