// Package tools declares the MCP tool catalog and runs the argument
// pipeline: normalization, tool-specific coercion, schema validation,
// typed decoding, dispatch, and response envelopes. Raw errors never
// cross this boundary; every failure leaves as a coded error envelope.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

// ErrorCode is the closed set of protocol error codes.
type ErrorCode string

const (
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	CodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
)

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Output carries the successful result of a tool call.
type Output struct {
	Content   []Content `json:"content"`
	Resources []any     `json:"resources,omitempty"`
}

// ErrorDetail describes a failed tool call.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// Envelope is the uniform tool response shape.
type Envelope struct {
	RequestID string       `json:"request_id"`
	Status    string       `json:"status"`
	Output    *Output      `json:"output,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// NewSuccess wraps result as a JSON content block, with any extra blocks
// appended after it.
func NewSuccess(result any, extra ...Content) Envelope {
	text := "null"
	if result != nil {
		if data, err := json.MarshalIndent(result, "", "  "); err == nil {
			text = string(data)
		} else {
			return NewError(CodeInternalError, fmt.Sprintf("encoding result: %v", err))
		}
	}
	content := append([]Content{{Type: "text", Text: text}}, extra...)
	return Envelope{
		RequestID: uuid.NewString(),
		Status:    "success",
		Output:    &Output{Content: content},
	}
}

// NewError builds an error envelope.
func NewError(code ErrorCode, message string) Envelope {
	return Envelope{
		RequestID: uuid.NewString(),
		Status:    "error",
		Error:     &ErrorDetail{Code: code, Message: message},
	}
}

// FromError maps a domain error onto the protocol code set.
func FromError(err error) Envelope {
	var (
		ve *ghErrors.ValidationError
		nf *ghErrors.ResourceNotFoundError
		ue *ghErrors.UnauthorizedError
		rl *ghErrors.RateLimitError
		ge *ghErrors.GitHubAPIError
	)
	switch {
	case errors.As(err, &ve):
		env := NewError(CodeValidationError, ve.Error())
		env.Error.Details = ve.Fields
		return env
	case errors.As(err, &nf):
		return NewError(CodeResourceNotFound, nf.Error())
	case errors.As(err, &ue):
		return NewError(CodeUnauthorized, ue.Error())
	case errors.As(err, &rl):
		return NewError(CodeRateLimited, rl.Error())
	case errors.As(err, &ge):
		if ge.Status >= http.StatusBadRequest && ge.Status < http.StatusInternalServerError {
			return NewError(CodeInvalidRequest, ge.Error())
		}
		return NewError(CodeInternalError, ge.Error())
	default:
		return NewError(CodeInternalError, err.Error())
	}
}
