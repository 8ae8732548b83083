package service

import "errors"

var (
	// ErrNotFound covers both a missing entity and an entity not owned by the
	// caller; the two are deliberately indistinguishable to the outside.
	ErrNotFound = errors.New("not found")
	// ErrNotConfigured means a required key or token is absent.
	ErrNotConfigured = errors.New("not configured")
	// ErrExternalService means a third-party API answered with a non-success
	// response or could not be reached.
	ErrExternalService = errors.New("external service error")
	// ErrReplyExists guards the one-active-reply-per-review invariant.
	ErrReplyExists = errors.New("review already has a reply")
)
