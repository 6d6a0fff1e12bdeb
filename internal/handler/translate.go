package handler

import (
	"context"
	"net/http"

	"microblog/internal/httputil"
	"microblog/internal/model"
)

// TextTranslator always yields user-facing text, even on failure.
type TextTranslator interface {
	Translate(ctx context.Context, text, source, target string) string
}

type TranslateHandler struct {
	translator TextTranslator
}

func NewTranslateHandler(translator TextTranslator) *TranslateHandler {
	return &TranslateHandler{
		translator: translator,
	}
}

// Translate handles POST /translate
// Accepts form or JSON {text, source_language, target_language}.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	var req model.TranslateRequest
	if err := httputil.Decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	text := h.translator.Translate(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
}
