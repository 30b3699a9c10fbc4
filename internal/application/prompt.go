package application

import (
	"fmt"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

// formatInstructions maps each post format to its prompt instruction.
var formatInstructions = map[model.PostFormat]string{
	model.FormatStory:      "Write as a personal story with a hook, tension, and lesson.",
	model.FormatHowTo:      "Write as a step-by-step how-to guide.",
	model.FormatList:       "Write as a list of tips or insights.",
	model.FormatContrarian: "Write as a contrarian/unpopular opinion that challenges common beliefs.",
	model.FormatQuestion:   "Write as a thought-provoking question to spark discussion.",
}

// lengthRanges maps each post length to the word range asked for.
var lengthRanges = map[model.PostLength]string{
	model.LengthShort:  "100-150 words",
	model.LengthMedium: "150-250 words",
	model.LengthLong:   "250-400 words",
}

const promptTemplate = `You are a viral LinkedIn content expert. Create an engaging LinkedIn post.

TOPIC: %s
FORMAT: %s
TONE: %s
LENGTH: %s
EMOJIS: %s

RULES:
- Start with a strong hook that stops scrolling
- Short paragraphs (1-2 sentences max)
- Add line breaks for readability
- End with a question or call-to-action
- Be conversational and authentic
- No hashtags unless specifically asked

Generate ONLY the LinkedIn post, nothing else:`

// BuildPrompt renders the provider instruction for opts. It is deterministic:
// an unknown format falls back to the story instruction and an unknown length
// to the medium range. Tone is embedded verbatim.
func BuildPrompt(opts model.PostOptions) string {
	format, ok := formatInstructions[opts.Format]
	if !ok {
		format = formatInstructions[model.FormatStory]
	}

	length, ok := lengthRanges[opts.Length]
	if !ok {
		length = lengthRanges[model.LengthMedium]
	}

	emojis := "No emojis"
	if opts.Emojis {
		emojis = "Use 2-4 relevant emojis"
	}

	return fmt.Sprintf(promptTemplate, opts.Topic, format, opts.Tone, length, emojis)
}
