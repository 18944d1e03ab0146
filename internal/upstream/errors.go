package upstream

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("upstream: unauthorized")
	ErrForbidden    = errors.New("upstream: forbidden")
	ErrNotFound     = errors.New("upstream: not found")
)

// ValidationError 422，字段 -> 信息
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "the given data was invalid"
}

func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// APIError 其余非 0 业务码
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string { return fmt.Sprintf("upstream: code=%d msg=%s", e.Code, e.Msg) }
