package schema

import "errors"

var (
	// ErrPtySpawn indicates pty allocation or shell exec failed.
	ErrPtySpawn = errors.New("pty spawn failed")
	// ErrSessionClosed indicates the session has terminated.
	ErrSessionClosed = errors.New("session closed")
	// ErrSubscriberLagged indicates a subscriber queue overflowed.
	ErrSubscriberLagged = errors.New("subscriber lagged")
	// ErrInvalidConfig indicates a malformed configuration value.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrReplayAndCommand indicates both a replay file and a command were given.
	ErrReplayAndCommand = errors.New("cannot combine a replay file with a command")
	// ErrNoShell indicates no command was given and $SHELL is unset.
	ErrNoShell = errors.New("no command given and SHELL is not set")
)
