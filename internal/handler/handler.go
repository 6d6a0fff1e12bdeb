package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"microblog/internal/httputil"
	"microblog/internal/transport/http/middleware"
	"microblog/internal/validation"
)

// pageParam reads ?page=, falling back to 1 for missing or malformed values.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// currentUser returns the authenticated user id or answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Please log in to access this page.")
		return 0, false
	}
	return userID, true
}

// writeDecodeError answers a failed httputil.Decode.
func writeDecodeError(w http.ResponseWriter, err error) {
	var reqErr *validation.RequestError
	if errors.As(err, &reqErr) {
		httputil.WriteValidationError(w, reqErr.Error())
		return
	}
	httputil.WriteBadRequest(w, "Invalid request body")
}

func internalError(w http.ResponseWriter, component, message string, err error) {
	log.Error().Str("component", component).Err(err).Msg(message)
	httputil.WriteInternalError(w, message)
}
