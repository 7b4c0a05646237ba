package models

import (
	"errors"
	"fmt"
	"math"
)

// Language selects the language of the system prompt.
type Language string

const (
	// LanguageIndonesian is the default language.
	LanguageIndonesian Language = "id"
	// LanguageEnglish switches the system prompt to English.
	LanguageEnglish Language = "en"
)

// Bounds of the user-adjustable generation settings. The steps only size the page sliders; any value
// inside a range is accepted.
const (
	MinTemperature  = 0.0
	MaxTemperature  = 1.0
	TemperatureStep = 0.05

	MinMaxTokens  = 256
	MaxMaxTokens  = 2000
	MaxTokensStep = 32
)

// ErrInvalidSettings is returned when a settings value falls outside its allowed range.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the generation parameters a principal can adjust during a session.
type Settings struct {
	Language    Language
	Model       string
	Temperature float64
	MaxTokens   int
}

// ParseLanguage returns the Language named by s.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(s); l {
	case LanguageIndonesian, LanguageEnglish:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown language %q", ErrInvalidSettings, s)
	}
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		Language:    LanguageIndonesian,
		Model:       "gpt-4",
		Temperature: 0.3,
		MaxTokens:   800,
	}
}

// Validate reports whether every field is within its allowed range.
func (s Settings) Validate() error {
	if _, err := ParseLanguage(string(s.Language)); err != nil {
		return err
	}
	if s.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidSettings)
	}
	if math.IsNaN(s.Temperature) || s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f is outside [%.2f, %.2f]",
			ErrInvalidSettings, s.Temperature, MinTemperature, MaxTemperature)
	}
	if s.MaxTokens < MinMaxTokens || s.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("%w: max_tokens %d is outside [%d, %d]",
			ErrInvalidSettings, s.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	return nil
}
