package models

// Settings holds user preferences.
type Settings struct {
	SoundEnabled           bool `json:"soundEnabled"`
	AnimationsEnabled      bool `json:"animationsEnabled"`
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:      true,
		AnimationsEnabled: true,
	}
}
