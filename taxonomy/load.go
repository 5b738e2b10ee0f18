package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/grantlens/core"
)

// Parse decodes a YAML taxonomy document and validates it.
func Parse(data []byte) (*Taxonomy, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTaxonomyInvalid, err)
	}
	return New(spec)
}

// Load reads and parses a YAML taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
