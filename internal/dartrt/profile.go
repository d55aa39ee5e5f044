package dartrt

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Profile describes the runtime revision of the analyzed binary. The builtin
// tables cover one recent ARM64 AOT runtime; a dartlift.toml profile adjusts
// them when the target was built against a different revision.
type Profile struct {
	Runtime RuntimeConfig    `toml:"runtime"`
	Thread  map[string]int64 `toml:"thread"`
}

// RuntimeConfig carries the tagging and layout parameters of the target
// runtime.
type RuntimeConfig struct {
	SmiTagSize         int  `toml:"smi_tag_size"`
	CompressedPointers bool `toml:"compressed_pointers"`
	WordSize           int  `toml:"word_size"`
}

// DefaultProfile returns the profile matching the builtin tables.
func DefaultProfile() *Profile {
	return &Profile{
		Runtime: RuntimeConfig{
			SmiTagSize:         SmiTagSize,
			CompressedPointers: true,
			WordSize:           WordSize,
		},
		Thread: map[string]int64{},
	}
}

// LoadProfile reads a TOML profile file. The [runtime] table is required;
// [thread] offset overrides are optional.
func LoadProfile(path string) (*Profile, error) {
	var p Profile
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("runtime") {
		return nil, fmt.Errorf("%s: missing [runtime]", path)
	}
	if p.Runtime.SmiTagSize <= 0 {
		return nil, fmt.Errorf("%s: [runtime].smi_tag_size must be positive", path)
	}
	if p.Runtime.WordSize != 4 && p.Runtime.WordSize != 8 {
		return nil, fmt.Errorf("%s: [runtime].word_size must be 4 or 8", path)
	}
	if p.Thread == nil {
		p.Thread = map[string]int64{}
	}
	for name, off := range p.Thread {
		if off < 0 {
			return nil, fmt.Errorf("%s: [thread].%s: negative offset %d", path, name, off)
		}
	}
	return &p, nil
}
