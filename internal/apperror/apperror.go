// Package apperror maps service failures onto the JSON error envelope
// returned by every route: {"message": "..."}.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindTooManyRequests
)

const (
	MsgInternal        = "Internal Server Error"
	MsgUnauthorized    = "Unauthorized"
	MsgBadRequest      = "Invalid request body"
	MsgTooManyRequests = "Too Many Requests"
	MsgPostNotFound    = "Post not found"
	MsgProductNotFound = "Product not found"
	MsgUserNotFound    = "User not found"
)

var statusByKind = map[Kind]int{
	KindInternal:        http.StatusInternalServerError,
	KindBadRequest:      http.StatusBadRequest,
	KindUnauthorized:    http.StatusUnauthorized,
	KindNotFound:        http.StatusNotFound,
	KindTooManyRequests: http.StatusTooManyRequests,
}

// Error carries a client-facing message; Err is kept for server logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthorized() *Error {
	return New(KindUnauthorized, MsgUnauthorized)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func BadRequest(err error) *Error {
	return &Error{Kind: KindBadRequest, Message: MsgBadRequest, Err: err}
}

// Internal wraps an unexpected failure, typically from the database.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// KindOf reports the kind of err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Respond writes the envelope for err. Internal details never reach the client.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	message := MsgInternal
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(HTTPStatus(err), gin.H{"message": message})
}
