package profile

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Profile is a named character persona: a synthesized voice plus the system
// prompt that seeds its conversation. Immutable after load.
type Profile struct {
	Name         string
	VoiceID      string `yaml:"voice"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Registry holds the fixed profile set loaded at startup.
type Registry struct {
	profiles map[string]Profile
	names    []string
}

type profilesDoc struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load reads the profile declaration document at path.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigLoadFailed(path, err)
	}
	return Parse(raw)
}

// Parse decodes a profile declaration document.
func Parse(raw []byte) (*Registry, error) {
	var doc profilesDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewConfigLoadFailed("profiles", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, apperrors.NewConfigMissingRequired("profiles")
	}

	reg := &Registry{
		profiles: make(map[string]Profile, len(doc.Profiles)),
		names:    make([]string, 0, len(doc.Profiles)),
	}
	for name, p := range doc.Profiles {
		if p.VoiceID == "" {
			return nil, apperrors.NewProfileInvalid(name, "voice")
		}
		if p.SystemPrompt == "" {
			return nil, apperrors.NewProfileInvalid(name, "system_prompt")
		}
		p.Name = name
		reg.profiles[name] = p
		reg.names = append(reg.names, name)
	}
	sort.Strings(reg.names)

	return reg, nil
}

// Get returns the profile for name.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, apperrors.NewProfileNotFound(name)
	}
	return p, nil
}

// Names returns the loaded profile names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
