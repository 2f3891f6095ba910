package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"kitchen-backend/daywindow"

	"github.com/go-playground/validator/v10"
)

// AllowedPhotoContentTypes lists what kitchen devices upload for completion
// photos.
var AllowedPhotoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// MaxUploadSize is the maximum allowed photo size (8MB).
const MaxUploadSize = 8 << 20

// ValidatePhotoUpload checks the size and declared content type of an
// uploaded completion photo.
func ValidatePhotoUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of 8MB", fh.Size)
	}

	contentType := fh.Header.Get("Content-Type")
	if !AllowedPhotoContentTypes[contentType] {
		return fmt.Errorf("invalid file type '%s'; allowed types: image/jpeg, image/png, image/webp, image/heic", contentType)
	}
	return nil
}

// RegisterValidators adds the custom binding tags used by request DTOs.
//
//	ymd     a YYYY-MM-DD calendar date
//	weekday 0 (Monday) to 6 (Sunday)
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(daywindow.DateLayout, fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := daywindow.ParseWeekday(int(fl.Field().Int()))
		return err == nil
	})
}

// SanitizeValidationError takes a validator error and returns a user-friendly
// message without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "uuid":
			messages = append(messages, fmt.Sprintf("%s must be a valid id", field))
		case "ymd":
			messages = append(messages, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
		case "weekday":
			messages = append(messages, fmt.Sprintf("%s must be between 0 (Monday) and 6 (Sunday)", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}
	return strings.Join(messages, "; ")
}
