package skin

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultSkin []byte

// Default returns the built-in skin, used when no skin file is configured.
func Default() *Skin {
	s, err := Parse(defaultSkin)
	if err != nil {
		panic(fmt.Sprintf("built-in skin: %v", err))
	}
	return s
}

// Load reads the skin at path, or returns the built-in skin when path is
// empty.
func Load(path string) (*Skin, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
