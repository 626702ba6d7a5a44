package exception

import "github.com/yanun0323/errors"

var (
	ErrUnauthorized    = errors.New("authentication required")
	ErrRequestRejected = errors.New("request rejected by server")
	ErrBadEnvelope     = errors.New("unexpected response envelope")
)
