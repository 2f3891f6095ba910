package services

import (
	"errors"

	"kitchen-backend/daywindow"
	"kitchen-backend/materialize"
)

var (
	ErrInvalidDate        = daywindow.ErrInvalidDate
	ErrInvalidType        = materialize.ErrInvalidType
	ErrRestaurantNotFound = materialize.ErrRestaurantNotFound

	ErrNotFound          = errors.New("not found")
	ErrTemplateInUse     = errors.New("template is referenced by materialized items")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)
