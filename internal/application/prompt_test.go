package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name     string
		opts     model.PostOptions
		contains []string
		excludes []string
	}{
		{
			name: "howto short with emojis",
			opts: model.PostOptions{
				Topic:  "Remote onboarding",
				Format: model.FormatHowTo,
				Tone:   "friendly",
				Length: model.LengthShort,
				Emojis: true,
			},
			contains: []string{
				"TOPIC: Remote onboarding\n",
				"FORMAT: Write as a step-by-step how-to guide.\n",
				"TONE: friendly\n",
				"LENGTH: 100-150 words\n",
				"EMOJIS: Use 2-4 relevant emojis\n",
			},
		},
		{
			name: "contrarian long without emojis",
			opts: model.PostOptions{
				Topic:  "Hustle culture",
				Format: model.FormatContrarian,
				Tone:   "bold",
				Length: model.LengthLong,
			},
			contains: []string{
				"FORMAT: Write as a contrarian/unpopular opinion that challenges common beliefs.\n",
				"LENGTH: 250-400 words\n",
				"EMOJIS: No emojis\n",
			},
		},
		{
			name: "unknown format falls back to story",
			opts: model.PostOptions{Topic: "x", Format: "poem", Length: model.LengthMedium},
			contains: []string{
				"FORMAT: Write as a personal story with a hook, tension, and lesson.\n",
			},
		},
		{
			name: "unknown length falls back to medium",
			opts: model.PostOptions{Topic: "x", Format: model.FormatList, Length: "epic"},
			contains: []string{
				"FORMAT: Write as a list of tips or insights.\n",
				"LENGTH: 150-250 words\n",
			},
		},
		{
			name: "tone is passed through verbatim",
			opts: model.PostOptions{Topic: "x", Tone: "  Sarcastic & dry  "},
			contains: []string{
				"TONE:   Sarcastic & dry  \n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.opts)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
			assert.True(t, strings.HasPrefix(got, "You are a viral LinkedIn content expert."))
			assert.True(t, strings.HasSuffix(got, "Generate ONLY the LinkedIn post, nothing else:"))
		})
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	opts := model.PostOptions{Topic: "AI at work", Format: model.FormatQuestion, Tone: "curious", Length: model.LengthShort}
	assert.Equal(t, BuildPrompt(opts), BuildPrompt(opts))
}
