package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrNotConvertible = errors.New("assets are not convertible")
	ErrNoQuotes       = errors.New("no price quotes loaded")
	ErrBadAddress     = errors.New("malformed ss58 address")
	ErrUnknownNetwork = errors.New("unknown network")
)
