package chat

import "errors"

// ErrNoSessionService is returned when asking without a session.
var ErrNoSessionService = errors.New("session service not available")
