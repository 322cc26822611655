package models

import (
	"errors"
)

var (
	// ErrEmptyInput means keyword extraction produced nothing to classify.
	ErrEmptyInput = errors.New("description produced no keywords")
	ErrValidation = errors.New("validation error")
)
