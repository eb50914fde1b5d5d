package alias

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML list of lists:
//
//	- [stormers, western province]
//	- [bulls, blue bulls]
//
// An empty path yields the defaults.
func LoadFile(path string) (*Groups, error) {
	if strings.TrimSpace(path) == "" {
		return NewGroups(DefaultGroups())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias groups file: %w", err)
	}

	var groups [][]string
	if err := yaml.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("decode alias groups file %s: %w", path, err)
	}
	return NewGroups(groups)
}
