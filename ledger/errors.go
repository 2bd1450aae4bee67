// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "errors"

// Every rejected operation wraps exactly one of these; match with errors.Is.
var (
	ErrValidation        = errors.New("invalid input")
	ErrState             = errors.New("invalid voting state")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStake = errors.New("insufficient stake")
	ErrNotFound          = errors.New("not found")
)
