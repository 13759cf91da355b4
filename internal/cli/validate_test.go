package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/normjump/internal/grammar"
)

func TestValidate_YAMLGrammar(t *testing.T) {
	out, _, err := execCommand(t, "validate", filepath.Join("..", "grammar", "testdata", "norms.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Grammar valid")
	assert.Contains(t, out, "top rule: NORM")
}

func TestValidate_CUEGrammar(t *testing.T) {
	out, _, err := execCommand(t, "validate", filepath.Join("..", "grammar", "testdata", "norms.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "Grammar valid")
}

func TestValidate_JSONOutput(t *testing.T) {
	path := filepath.Join("..", "grammar", "testdata", "norms.yaml")
	out, _, err := execCommand(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	cfg, err := grammar.LoadFile(path)
	require.NoError(t, err)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, path, data["path"])
	assert.Equal(t, "NORM", data["top_rule"])
	assert.Equal(t, cfg.Hash(), data["hash"])
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execCommand(t, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_BadProbabilitySum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	broken := `top_rule: NORM
rules:
  NORM:
    Norm: [NORMTYPE]
  NORMTYPE:
    NoNorm: []
  NONORM:
    NoNorm: []
  EMPTY:
    Empty: []
node_type_probabilities:
  NORM: {Norm: 0.5}
  NORMTYPE: {NoNorm: 1.0}
  NONORM: {NoNorm: 1.0}
  EMPTY: {Empty: 1.0}
terminal_value_probabilities:
  NoNorm: {"true": 1.0}
  Empty: {"": 1.0}
`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	out, _, err := execCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E002")
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, _, err := execCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
