package models

import "errors"

var (
	ErrBucketNotFound = errors.New("timezone bucket not found")
	ErrDeviceNotFound = errors.New("device not found")
	ErrValidation     = errors.New("validation error")
)
