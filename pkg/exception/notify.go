package exception

import "github.com/yanun0323/errors"

var (
	ErrMalformedFrame  = errors.New("malformed inbound frame")
	ErrPrompterTimeout = errors.New("prompt component not mounted in time")
)
