package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"microblog/internal/translate"
)

// User-facing translation outcomes. The transport always gets a string.
const (
	MsgTranslateTokenMissing  = "Translation token is not set up"
	MsgTranslateFolderMissing = "Translation folder ID is not set up"
	MsgTranslateFailed        = "Could not translate text"
)

type TranslateService struct {
	translator translate.Translator
}

func NewTranslateService(t translate.Translator) *TranslateService {
	return &TranslateService{translator: t}
}

// Translate returns the translated text or a fixed explanatory message.
func (s *TranslateService) Translate(ctx context.Context, text, source, target string) string {
	if s.translator == nil {
		return MsgTranslateTokenMissing
	}

	out, err := s.translator.Translate(ctx, text, source, target)
	switch {
	case err == nil:
		return out
	case errors.Is(err, translate.ErrTokenMissing):
		return MsgTranslateTokenMissing
	case errors.Is(err, translate.ErrFolderIDMissing):
		return MsgTranslateFolderMissing
	default:
		log.Warn().Str("component", "TranslateService").Err(err).Msg("translation failed")
		return MsgTranslateFailed
	}
}
