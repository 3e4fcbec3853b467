package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNoSession   = errors.New("server cannot refresh this session, log in again")
)
