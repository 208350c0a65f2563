package domain

import "errors"

// ErrNotFound is wrapped by lookups that find no matching entity.
var ErrNotFound = errors.New("not found")
