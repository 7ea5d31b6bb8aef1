package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/domain/entity"
)

func TestParseLengthProfiles(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(entity.LengthProfiles)
		wantErr string
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: func(entity.LengthProfiles) {},
		},
		{
			name: "partial override",
			yaml: "long:\n  max_tokens: 800\n  description: Detailed summary with examples\n",
			want: func(p entity.LengthProfiles) {
				p[entity.LengthLong] = entity.LengthProfile{WordTarget: 420, MaxTokens: 800, Description: "Detailed summary with examples"}
			},
		},
		{
			name: "several profiles",
			yaml: "short:\n  word_target: 80\nmedium:\n  word_target: 200\n",
			want: func(p entity.LengthProfiles) {
				s := p[entity.LengthShort]
				s.WordTarget = 80
				p[entity.LengthShort] = s
				m := p[entity.LengthMedium]
				m.WordTarget = 200
				p[entity.LengthMedium] = m
			},
		},
		{
			name:    "unknown profile",
			yaml:    "tiny:\n  word_target: 10\n",
			wantErr: `unknown length profile: "tiny"`,
		},
		{
			name:    "unknown field",
			yaml:    "short:\n  words: 10\n",
			wantErr: "field words not found",
		},
		{
			name:    "non-positive tokens",
			yaml:    "medium:\n  max_tokens: 0\n",
			wantErr: "medium: max_tokens must be positive",
		},
		{
			name:    "empty description",
			yaml:    "short:\n  description: \"\"\n",
			wantErr: "short: description cannot be empty",
		},
		{
			name:    "malformed yaml",
			yaml:    "short: [",
			wantErr: "parse:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLengthProfiles([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			want := entity.DefaultLengthProfiles()
			tt.want(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadLengthProfiles_EmptyPath(t *testing.T) {
	got, err := LoadLengthProfiles("")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLengthProfiles(), got)
}
