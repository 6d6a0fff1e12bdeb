package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"microblog/internal/translate"
)

type stubTranslator struct {
	out string
	err error
}

func (s stubTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return s.out, s.err
}

func TestTranslateService_Messages(t *testing.T) {
	tests := []struct {
		name       string
		translator translate.Translator
		want       string
	}{
		{"ok", stubTranslator{out: "hola"}, "hola"},
		{"no translator", nil, MsgTranslateTokenMissing},
		{"token", stubTranslator{err: translate.ErrTokenMissing}, MsgTranslateTokenMissing},
		{"folder", stubTranslator{err: translate.ErrFolderIDMissing}, MsgTranslateFolderMissing},
		{"upstream", stubTranslator{err: fmt.Errorf("%w: status 500", translate.ErrUpstream)}, MsgTranslateFailed},
		{"network", stubTranslator{err: errors.New("dial tcp: timeout")}, MsgTranslateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTranslateService(tt.translator)
			assert.Equal(t, tt.want, svc.Translate(context.Background(), "hello", "en", "es"))
		})
	}
}
