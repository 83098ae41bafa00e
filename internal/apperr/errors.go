package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies failures so handlers can map them onto HTTP statuses.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindUpstream      Kind = "upstream_error"
	KindParse         Kind = "parse_error"
	KindPersistence   Kind = "persistence_error"
	KindConfiguration Kind = "configuration_error"
	KindInternal      Kind = "internal_error"
)

// Error is the application error carried across package boundaries.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func Upstream(status int, message string, err error) *Error {
	return New(KindUpstream, status, message, err)
}

func Persistence(message string, err error) *Error {
	return New(KindPersistence, http.StatusInternalServerError, message, err)
}

func Internal(err error) *Error {
	return New(KindInternal, http.StatusInternalServerError, "internal server error", err)
}

// StatusOf returns the HTTP status for err, 500 when it carries none.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ConfigError lists every required setting that was missing at startup.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)
	return "missing required configuration: " + strings.Join(missing, ", ")
}
