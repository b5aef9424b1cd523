package resp

import "errors"

var (
	// ErrProtocol reports a malformed or truncated frame.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded reports a frame that declares more data than the
	// reader accepts.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)
