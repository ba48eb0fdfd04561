package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyResult    = errors.New("no eligible results")
	ErrOracleResponse = errors.New("oracle returned an unusable completion")
)
