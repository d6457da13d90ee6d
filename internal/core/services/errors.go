package services

import "errors"

// Command errors
var (
	ErrCommandNotFound     = errors.New("command: not found")
	ErrCommandAlreadyAcked = errors.New("command: already acked with a different outcome")
	ErrInvalidKindForScope = errors.New("command: kind does not match the given scope")
	ErrInvalidPayload      = errors.New("command: invalid payload")
	ErrForbidden           = errors.New("command: principal is not bound to this host")
)

// Node errors
var (
	ErrNodeNotFound     = errors.New("node: not found")
	ErrNodeInvalidInput = errors.New("node: invalid input")
	ErrHostUnreachable  = errors.New("node: no reachable host")
)

// Host errors
var (
	ErrHostNotFound     = errors.New("host: not found")
	ErrHostInvalidInput = errors.New("host: invalid input")
)

// Blockchain errors
var (
	ErrBlockchainNotFound = errors.New("blockchain: not found")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

// Store errors
var (
	ErrStoreUnavailable = errors.New("store: unavailable")
)
