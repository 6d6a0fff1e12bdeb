package httputil

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/goccy/go-json"

	"microblog/internal/validation"
)

// MaxBodyBytes caps request bodies; every payload here is a few short fields.
const MaxBodyBytes = 64 << 10

var ErrInvalidBody = errors.New("invalid request body")

// Decode fills dst from a JSON body or from url-encoded/multipart form
// fields named by dst's json tags, then validates it.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := decodeForm(r, dst); err != nil {
			return err
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
	}

	return validation.ValidateStruct(dst)
}

var formDecoder = newFormDecoder()

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("json")
	d.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return isTruthy(vals[0]), nil
	}, false)
	return d
}

func decodeForm(r *http.Request, dst interface{}) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(MaxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "y", "yes":
		return true
	}
	return false
}
