package domain

import "errors"

type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT" // 400
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"     // 401
	KindInvalidToken    ErrorKind = "INVALID_TOKEN"    // 401
	KindTokenMismatch   ErrorKind = "TOKEN_MISMATCH"   // 401
	KindNotFound        ErrorKind = "NOT_FOUND"        // 404
	KindConflict        ErrorKind = "CONFLICT"         // 409
	KindUploadFailed    ErrorKind = "UPLOAD_FAILED"    // 400
	KindInternal        ErrorKind = "INTERNAL"         // 500
)

// Error is what services return; the REST layer turns Kind into a status.
// Message is safe to show to clients, Err is for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, msg string, details ...string) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func InvalidArgument(msg string, details ...string) *Error {
	return NewError(KindInvalidArgument, msg, details...)
}

func Unauthorized(msg string) *Error {
	return NewError(KindUnauthorized, msg)
}

func NotFound(msg string) *Error {
	return NewError(KindNotFound, msg)
}

func Conflict(msg string) *Error {
	return NewError(KindConflict, msg)
}

func Internal(msg string, err error) *Error {
	return WrapError(KindInternal, msg, err)
}
