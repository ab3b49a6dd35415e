package ceremony

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/nealmcb/psf-tuf-runbook/x/fileutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSession_Validation(t *testing.T) {
	withMemVfs(t)

	keyTool := &mockedTool{name: KeyManagementTool}
	convertTool := &mockedTool{name: ConversionTool}
	find := testFinder(keyTool, convertTool)

	_, err := NewSession(SessionParams{
		Algo:     P256,
		Secrets:  staticPin("123456"),
		FindTool: find,
	})
	require.Error(t, err)
	assert.Equal(t, "device serial is required", err.Error())

	_, err = NewSession(SessionParams{
		Serial:   "ABC123",
		Algo:     P256,
		FindTool: find,
	})
	require.Error(t, err)
	assert.Equal(t, "secret provider is required", err.Error())

	_, err = NewSession(SessionParams{
		Serial:   "ABC123",
		Algo:     P256,
		Secrets:  staticPin(""),
		FindTool: find,
	})
	require.Error(t, err)
	assert.Equal(t, "operator PIN must not be empty", err.Error())
}

func Test_NewSession_MissingTool(t *testing.T) {
	withMemVfs(t)

	find := func(name string) (Runner, error) {
		if name == ConversionTool {
			return nil, errors.New("exec: not found")
		}
		return &mockedTool{name: name}, nil
	}

	_, err := NewSession(SessionParams{
		Serial:   "ABC123",
		Algo:     P256,
		Secrets:  staticPin("123456"),
		FindTool: find,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPrerequisiteTool))
	assert.Contains(t, err.Error(), ConversionTool)
}

func Test_NewSession_PinCollectedOnce(t *testing.T) {
	withMemVfs(t)

	keyTool := &mockedTool{name: KeyManagementTool}
	convertTool := &mockedTool{name: ConversionTool}

	prompts := 0
	secrets := SecretFunc(func(prompt string) (string, error) {
		prompts++
		assert.Contains(t, prompt, "PIN")
		return "123456", nil
	})

	sess, err := NewSession(SessionParams{
		Serial:   "ABC123",
		Algo:     P256,
		Secrets:  secrets,
		FindTool: testFinder(keyTool, convertTool),
		Module:   testModule,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, prompts)
	assert.Equal(t, "123456", sess.Pin)

	// output folder is created at session start
	assert.NoError(t, fileutil.FolderExists("ceremony-products/ABC123"))
}

func Test_Preflight(t *testing.T) {
	withMemVfs(t)

	module := "/opt/custom/p11.so"
	err := afero.WriteFile(fileutil.Vfs, module, []byte{0}, 0644)
	require.NoError(t, err)

	cfg := &Config{Module: module}
	keyTool := &mockedTool{name: KeyManagementTool}
	convertTool := &mockedTool{name: ConversionTool}

	path, err := Preflight(cfg, testFinder(keyTool, convertTool))
	require.NoError(t, err)
	assert.Equal(t, module, path)

	// missing tool
	_, err = Preflight(cfg, func(name string) (Runner, error) {
		return nil, errors.New("exec: not found")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPrerequisiteTool))

	// missing module
	require.NoError(t, fileutil.Vfs.Remove(module))
	_, err = Preflight(cfg, testFinder(keyTool, convertTool))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingModule))
}
