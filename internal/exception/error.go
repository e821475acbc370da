package exception

import "errors"

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// input errors, returned before any work is dispatched
var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidPort   = errors.New("invalid port")
	ErrInvalidWindow = errors.New("invalid date window")
	ErrInvalidTarget = errors.New("invalid target")
)

// protocol collaborator errors, classified into status categories
var (
	ErrAuth              = errors.New("authorization rejected")
	ErrProtocol          = errors.New("protocol error")
	ErrConnection        = errors.New("connection failed")
	ErrTimeout           = errors.New("operation timed out")
	ErrUnsupportedScheme = errors.New("unsupported protocol scheme")
)

// ErrPrivilege returned when an operation requires raw socket privilege
var ErrPrivilege = errors.New("insufficient privilege")
