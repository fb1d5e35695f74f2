package storygen

// Config controls story generation.
type Config struct {
	MaxTokens   int
	Temperature float64

	// TopK is how many reference passages to ask the retriever for.
	TopK int
}

// DefaultConfig returns the standard story generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2000,
		Temperature: 0.7,
		TopK:        3,
	}
}
