package qerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	default:
		return "internal"
	}
}

// Error is an error with a Kind. The message is safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same kind and message, so sentinel values
// keep working through fmt.Errorf wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func NewBadRequest(format string, args ...interface{}) error {
	return &Error{Kind: BadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...interface{}) error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-facing message of err. Errors without a Kind keep their own text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

var (
	// Course errors
	CourseNotFoundError      = &Error{Kind: NotFound, Message: "Course not found"}
	MissingCourseIDError     = &Error{Kind: BadRequest, Message: "Provide a course id"}
	NotCourseInstructorError = &Error{Kind: BadRequest, Message: "course can only be edited by the instructor who created it"}
	DraftCourseError         = &Error{Kind: Forbidden, Message: "Accessing a draft course is forbidden"}
	InvalidStatusError       = &Error{Kind: BadRequest, Message: "Status must be Draft or Published"}

	// Category errors
	CategoryNotFoundError = &Error{Kind: NotFound, Message: "Category not found"}

	// User errors
	UserNotFoundError       = &Error{Kind: NotFound, Message: "User not found"}
	InstructorNotFoundError = &Error{Kind: NotFound, Message: "Instructor not found"}
	UnauthenticatedError    = &Error{Kind: Unauthorized, Message: "You must be authenticated to access this resource"}

	// Generic store errors
	DocumentNotFoundError = &Error{Kind: NotFound, Message: "document not found"}
)
