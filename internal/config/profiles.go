package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"blog-summarizer/internal/domain/entity"
)

// profileOverride holds the fields a profiles file may set. Omitted fields
// keep the built-in value.
type profileOverride struct {
	WordTarget  *int    `yaml:"word_target"`
	MaxTokens   *int    `yaml:"max_tokens"`
	Description *string `yaml:"description"`
}

// LoadLengthProfiles returns the built-in profiles with the overrides in
// path applied. An empty path returns the built-in table.
//
//	short:
//	  word_target: 100
//	long:
//	  max_tokens: 800
//	  description: Detailed summary with examples
func LoadLengthProfiles(path string) (entity.LengthProfiles, error) {
	if path == "" {
		return entity.DefaultLengthProfiles(), nil
	}

	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read length profiles: %w", err)
	}
	profiles, err := ParseLengthProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("length profiles %s: %w", path, err)
	}
	return profiles, nil
}

// ParseLengthProfiles applies YAML overrides to the built-in profiles.
// Unknown profile names and unknown fields are rejected.
func ParseLengthProfiles(data []byte) (entity.LengthProfiles, error) {
	profiles := entity.DefaultLengthProfiles()

	var overrides map[string]profileOverride
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var errs []error
	for name, o := range overrides {
		pref := entity.LengthPreference(name)
		profile, ok := profiles[pref]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", entity.ErrUnknownLengthProfile, name))
			continue
		}

		if o.WordTarget != nil {
			profile.WordTarget = *o.WordTarget
		}
		if o.MaxTokens != nil {
			profile.MaxTokens = *o.MaxTokens
		}
		if o.Description != nil {
			profile.Description = *o.Description
		}

		if profile.WordTarget < 1 {
			errs = append(errs, fmt.Errorf("%s: word_target must be positive", name))
		}
		if profile.MaxTokens < 1 {
			errs = append(errs, fmt.Errorf("%s: max_tokens must be positive", name))
		}
		if profile.Description == "" {
			errs = append(errs, fmt.Errorf("%s: description cannot be empty", name))
		}
		profiles[pref] = profile
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return profiles, nil
}
