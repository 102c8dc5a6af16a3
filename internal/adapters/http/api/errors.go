// Package api declares HTTP contracts and route registration helpers.
package api

import "errors"

var (
	// ErrBadRequest indicates a malformed or out-of-range request.
	ErrBadRequest = errors.New("bad request")
)
