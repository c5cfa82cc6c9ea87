// Package chaterr classifies the ways a chat exchange can fail.
package chaterr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindNetwork means the request never reached, or never returned from, the relay.
	KindNetwork Kind = "network"
	// KindAPI means the relay or the upstream returned a non-success status.
	KindAPI Kind = "api"
	// KindParsing means a line could not be decoded. It is recovered locally.
	KindParsing          Kind = "parsing"
	KindModelUnavailable Kind = "model_unavailable"
	KindEmptyResponse    Kind = "empty_response"
	KindCancel           Kind = "cancel"
	KindUnknown          Kind = "unknown"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
