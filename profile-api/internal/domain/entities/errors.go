package entities

import "errors"

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrNotFound       = errors.New("not found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
