package content

// Config controls content generation.
type Config struct {
	MaxTokens   int
	Temperature float64

	// AdvancedAfter is the interaction count that unlocks advanced content.
	AdvancedAfter int
	// ProfileMemory is how many distinct recent profiles are remembered.
	ProfileMemory int
	// ContentTypeMemory bounds the remembered content types per user.
	ContentTypeMemory int
	// EngagementChars is the response length that counts as full engagement.
	EngagementChars float64
	// ConversationItems caps how many past texts are quoted in the prompt.
	ConversationItems int
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1024,
		Temperature:       0.7,
		AdvancedAfter:     3,
		ProfileMemory:     3,
		ContentTypeMemory: 20,
		EngagementChars:   800,
		ConversationItems: 3,
	}
}
