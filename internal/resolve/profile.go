package resolve

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadSelection reads a selection profile from a YAML file, e.g.
//
//	mode: multi
//	street: Address
//	postcode: Zip
//	city: Town
//	country: UK
func LoadSelection(path string) (Selection, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return Selection{}, eris.Wrap(err, "resolve: read selection file")
	}
	return ParseSelection(data)
}

// ParseSelection decodes a YAML selection profile. A profile naming only
// "column" defaults to single mode.
func ParseSelection(data []byte) (Selection, error) {
	var s Selection
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Selection{}, eris.Wrap(err, "resolve: parse selection")
	}
	if s.Mode == "" && s.Column != "" {
		s.Mode = ModeSingle
	}
	if s.Mode != ModeSingle && s.Mode != ModeMulti {
		return Selection{}, eris.Wrapf(ErrInvalidSelection, "unknown mode %q", s.Mode)
	}
	return s, nil
}
