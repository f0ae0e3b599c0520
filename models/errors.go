package models

import "errors"

// ErrNotFound is returned when a referenced user, post or attachment does not
// exist (or is no longer available for binding)
var ErrNotFound = errors.New("not found")
