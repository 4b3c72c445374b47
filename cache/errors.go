package cache

import "errors"

// ErrInvalidArgument is returned when a caller violates an operation's
// contract, such as accessing a negative block or sizing a cache with no
// lines.
var ErrInvalidArgument = errors.New("invalid argument")
