package entity

import (
	"fmt"
	"strings"
)

// LengthPreference selects a LengthProfile.
type LengthPreference string

const (
	LengthShort  LengthPreference = "short"
	LengthMedium LengthPreference = "medium"
	LengthLong   LengthPreference = "long"
)

// DefaultLength is used when a request does not name a preference.
const DefaultLength = LengthMedium

// LengthPreferences lists the accepted preferences in ascending order.
var LengthPreferences = []LengthPreference{LengthShort, LengthMedium, LengthLong}

// ParseLengthPreference accepts "short", "medium" or "long". Empty input yields DefaultLength.
func ParseLengthPreference(s string) (LengthPreference, error) {
	switch p := LengthPreference(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultLength, nil
	case LengthShort, LengthMedium, LengthLong:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLengthProfile, s)
	}
}

// FallbackBulletCount is the number of sentences the fallback summary keeps.
func (p LengthPreference) FallbackBulletCount() int {
	switch p {
	case LengthShort:
		return 3
	case LengthLong:
		return 7
	default:
		return 5
	}
}

// LengthProfile drives the prompt text and token budget for one preference.
type LengthProfile struct {
	WordTarget  int    `yaml:"word_target" json:"wordTarget"`
	MaxTokens   int    `yaml:"max_tokens" json:"maxTokens"`
	Description string `yaml:"description" json:"description"`
}

// LengthProfiles is the read-only profile table built at startup.
type LengthProfiles map[LengthPreference]LengthProfile

// DefaultLengthProfiles returns a fresh copy of the built-in profile table.
func DefaultLengthProfiles() LengthProfiles {
	return LengthProfiles{
		LengthShort:  {WordTarget: 120, MaxTokens: 200, Description: "Brief overview with key points"},
		LengthMedium: {WordTarget: 240, MaxTokens: 400, Description: "Balanced summary with context"},
		LengthLong:   {WordTarget: 420, MaxTokens: 600, Description: "Comprehensive summary with details"},
	}
}

// Lookup returns the profile for p or ErrUnknownLengthProfile.
func (lp LengthProfiles) Lookup(p LengthPreference) (LengthProfile, error) {
	profile, ok := lp[p]
	if !ok {
		return LengthProfile{}, fmt.Errorf("%w: %q", ErrUnknownLengthProfile, p)
	}
	return profile, nil
}
