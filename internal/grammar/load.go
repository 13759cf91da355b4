package grammar

import (
	"fmt"
	"path/filepath"
)

// LoadFile loads a grammar from a .yaml, .yml, or .cue file,
// dispatching on the extension.
func LoadFile(path string) (*Config, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	default:
		return nil, fmt.Errorf("unsupported grammar file extension %q (want .yaml, .yml, or .cue)", filepath.Ext(path))
	}
}
