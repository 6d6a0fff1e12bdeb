package model

import "errors"

// ResetPasswordRequest asks for a reset mail to be sent to Email.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordForm carries the new password for a reset token.
type ResetPasswordForm struct {
	Password string `json:"password" validate:"required"`
}

// TranslateRequest is the /translate payload.
type TranslateRequest struct {
	Text           string `json:"text" validate:"required"`
	SourceLanguage string `json:"source_language" validate:"required,max=8"`
	TargetLanguage string `json:"target_language" validate:"required,max=8"`
}

var (
	ErrResetTokenInvalid = errors.New("reset token is invalid")
	ErrResetTokenExpired = errors.New("reset token has expired")

	// ErrTranslationFailed wraps any non-success from the translation provider.
	ErrTranslationFailed = errors.New("translation service error")

	// ErrLanguageUndetermined is returned by detectors that cannot tell the language.
	ErrLanguageUndetermined = errors.New("language could not be determined")
)
