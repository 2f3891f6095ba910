package utils

import (
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSanitizeValidationErrorRequired(t *testing.T) {
	type req struct {
		Label string `validate:"required"`
	}
	msg := SanitizeValidationError(newValidator(t).Struct(req{}))
	if msg != "label is required" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSanitizeValidationErrorOneOf(t *testing.T) {
	type req struct {
		Type string `validate:"oneof=OPENING CLOSING"`
	}
	msg := SanitizeValidationError(newValidator(t).Struct(req{Type: "LUNCH"}))
	if !strings.Contains(msg, "OPENING, CLOSING") {
		t.Errorf("expected allowed values in message, got: %s", msg)
	}
}

func TestCustomTags(t *testing.T) {
	type req struct {
		Date string `validate:"ymd"`
		Day  int    `validate:"weekday"`
	}
	v := newValidator(t)

	if err := v.Struct(req{Date: "2024-11-15", Day: 6}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	msg := SanitizeValidationError(v.Struct(req{Date: "15.11.2024", Day: 7}))
	if !strings.Contains(msg, "YYYY-MM-DD") || !strings.Contains(msg, "0 (Monday)") {
		t.Errorf("expected date and weekday messages, got: %s", msg)
	}
	if err := v.Struct(req{Date: "2024-11-15", Day: -1}); err == nil {
		t.Error("expected negative weekday to be rejected")
	}
}

func TestSanitizeValidationErrorNonValidator(t *testing.T) {
	if msg := SanitizeValidationError(nil); msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
	if msg := SanitizeValidationError(errors.New("invalid character 'x'")); msg != "Invalid request body" {
		t.Errorf("expected generic message, got: %s", msg)
	}
}

func photoHeader(contentType string, size int64) *multipart.FileHeader {
	fh := &multipart.FileHeader{Filename: "photo", Size: size, Header: make(textproto.MIMEHeader)}
	fh.Header.Set("Content-Type", contentType)
	return fh
}

func TestValidatePhotoUpload(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/heic"} {
		if err := ValidatePhotoUpload(photoHeader(ct, 1024)); err != nil {
			t.Errorf("expected %s to be accepted, got: %v", ct, err)
		}
	}

	err := ValidatePhotoUpload(photoHeader("image/jpeg", 20<<20))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size error, got: %v", err)
	}

	err = ValidatePhotoUpload(photoHeader("application/pdf", 1024))
	if err == nil || !strings.Contains(err.Error(), "invalid file type") {
		t.Errorf("expected content type error, got: %v", err)
	}
}
