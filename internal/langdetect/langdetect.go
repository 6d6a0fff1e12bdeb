// Package langdetect guesses the language of a short text.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"microblog/internal/model"
)

// Detector returns an ISO 639-1 code for text, or model.ErrLanguageUndetermined.
type Detector interface {
	Detect(text string) (string, error)
}

// WhatlangDetector is a trigram detector backed by whatlanggo.
type WhatlangDetector struct {
	// RequireReliable rejects guesses whatlanggo itself marks unreliable.
	RequireReliable bool
}

func NewDetector() *WhatlangDetector {
	return &WhatlangDetector{RequireReliable: true}
}

func (d *WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", model.ErrLanguageUndetermined
	}

	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", model.ErrLanguageUndetermined
	}
	if d.RequireReliable && !info.IsReliable() {
		return "", model.ErrLanguageUndetermined
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "", model.ErrLanguageUndetermined
	}
	return code, nil
}
