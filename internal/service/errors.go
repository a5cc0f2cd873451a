package service

import (
	"errors"
	"strings"
)

// ErrInvalidCurrencyFormat indicates a currency code is not three upper-case letters.
var ErrInvalidCurrencyFormat = errors.New("invalid currency code format")

// ErrInvalidRefreshID indicates the refresh ID format is invalid.
var ErrInvalidRefreshID = errors.New("invalid refresh_id")

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrMissingCredential indicates a live fetch was requested without an API key.
var ErrMissingCredential = errors.New("enter your Metals-API access key")

// ErrNoSnapshot indicates no rates have been fetched yet.
var ErrNoSnapshot = errors.New("no prices fetched yet")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")

// FetchFailedError is returned in place of a snapshot when the most recent
// fetch failed. It matches ErrNoSnapshot under errors.Is.
type FetchFailedError struct {
	RefreshID string
	Msg       string
}

func (e *FetchFailedError) Error() string {
	return e.Msg
}

// Is reports whether target is ErrNoSnapshot.
func (e *FetchFailedError) Is(target error) bool {
	return target == ErrNoSnapshot
}

// IsValidCurrencyCode checks whether a string is a three-letter upper-case code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
