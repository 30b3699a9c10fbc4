package model

// PostOptions describes the post a user asked for.
type PostOptions struct {
	Topic  string
	Format PostFormat
	Tone   string
	Length PostLength
	Emojis bool
}

// GenerationResult is returned to the caller after a successful generation.
type GenerationResult struct {
	Content          string
	CreditsRemaining int
	User             User
}
