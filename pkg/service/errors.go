package service

import (
	"errors"
)

var (
	// ErrInvalidURL means the candidate URL failed validation. Nothing was
	// written.
	ErrInvalidURL = errors.New("provided URL is not valid")

	// ErrMalformedCode means the short code has the wrong length. No lookup
	// was performed.
	ErrMalformedCode = errors.New("invalid short url")

	// ErrNotFound means the code or id exists in neither cache nor store.
	ErrNotFound = errors.New("short URL not found")

	// ErrMultipleRecords means a uniqueness invariant is broken: more than
	// one row matched where at most one may exist.
	ErrMultipleRecords = errors.New("more than one record matched a unique key")

	// ErrCodeSpaceExhausted means code generation exceeded its collision
	// retry bound.
	ErrCodeSpaceExhausted = errors.New("could not generate a unique short code")
)
