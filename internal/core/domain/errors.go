package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCredentialPersist = errors.New("credential could not be persisted")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrStoreClosed       = errors.New("extras store closed")
	ErrExtrasNotFound    = errors.New("extras not found")
)

// NetworkError reports a transport failure or an unexpected HTTP status from the
// backend or the identity provider. StatusCode is zero when no response arrived.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError reports a payload that did not have the expected shape.
type DecodingError struct {
	Op  string
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
