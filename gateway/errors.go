package gateway

import "errors"

var (
	ErrSourceNotFound   = errors.New("Source wasn't found")
	ErrMappingNotFound  = errors.New("Mapping wasn't found")
	ErrEntityNotFound   = errors.New("Entity wasn't found")
	ErrObjectNotFound   = errors.New("Object wasn't found")
	ErrSourceDisabled   = errors.New("Source is disabled")
	ErrMissingParameter = errors.New("Required configuration parameter is missing")
)
