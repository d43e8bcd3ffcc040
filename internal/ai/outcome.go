package ai

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OutcomeKind classifies the result of a single model attempt
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeRateLimited
	OutcomeOtherError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not found"
	case OutcomeRateLimited:
		return "rate limited"
	case OutcomeOtherError:
		return "error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is what every generation attempt returns instead of a bare error
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Success wraps generated text
func Success(text string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Text: text}
}

// Failure classifies err into an Outcome
func Failure(err error) Outcome {
	kind := ClassifyError(err)
	if kind == OutcomeSuccess {
		kind = OutcomeOtherError
	}
	return Outcome{Kind: kind, Err: err}
}

// OK reports whether the attempt produced text
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	}
	return o.Kind.String()
}

// APIStatusError is returned by the REST generator for non-2xx responses
type APIStatusError struct {
	StatusCode int
	Body       string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, TruncateString(e.Body, 200))
}

// ClassifyError maps an API error onto an OutcomeKind. Typed errors are
// checked first; the message is only inspected when no status is available.
func ClassifyError(err error) OutcomeKind {
	if err == nil {
		return OutcomeSuccess
	}

	var statusErr *APIStatusError
	if errors.As(err, &statusErr) {
		if kind, ok := kindForHTTPStatus(statusErr.StatusCode); ok {
			return kind
		}
		return OutcomeOtherError
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := kindForHTTPStatus(apiErr.HTTPCode()); ok {
			return kind
		}
		if st := apiErr.GRPCStatus(); st != nil {
			if kind, ok := kindForGRPCCode(st.Code()); ok {
				return kind
			}
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if kind, ok := kindForHTTPStatus(gErr.Code); ok {
			return kind
		}
	}

	if st, ok := status.FromError(err); ok {
		if kind, ok := kindForGRPCCode(st.Code()); ok {
			return kind
		}
	}

	return classifyMessage(err.Error())
}

func kindForHTTPStatus(code int) (OutcomeKind, bool) {
	switch code {
	case http.StatusNotFound:
		return OutcomeNotFound, true
	case http.StatusTooManyRequests:
		return OutcomeRateLimited, true
	}
	return OutcomeOtherError, false
}

func kindForGRPCCode(code codes.Code) (OutcomeKind, bool) {
	switch code {
	case codes.NotFound:
		return OutcomeNotFound, true
	case codes.ResourceExhausted:
		return OutcomeRateLimited, true
	}
	return OutcomeOtherError, false
}

var (
	// "Error 429", "status 429", "code: 429", "code = ResourceExhausted"
	rateLimitedStatus = regexp.MustCompile(`\b(?:error|status|code)\s*[:=]?\s*(?:429|resourceexhausted)\b`)
	notFoundStatus    = regexp.MustCompile(`\b(?:error|status|code)\s*[:=]?\s*(?:404|notfound)\b`)
)

// classifyMessage is the last resort for errors that carry no status.
// Bare numbers are ignored so request IDs or token counts cannot match.
func classifyMessage(msg string) OutcomeKind {
	msg = strings.ToLower(msg)

	if rateLimitedStatus.MatchString(msg) {
		return OutcomeRateLimited
	}
	rateLimited := []string{
		"quota",
		"resource_exhausted",
		"resource has been exhausted",
		"rate limit",
		"too many requests",
	}
	for _, marker := range rateLimited {
		if strings.Contains(msg, marker) {
			return OutcomeRateLimited
		}
	}

	if notFoundStatus.MatchString(msg) {
		return OutcomeNotFound
	}
	notFound := []string{
		"is not found",
		"not_found",
		"model not found",
	}
	for _, marker := range notFound {
		if strings.Contains(msg, marker) {
			return OutcomeNotFound
		}
	}

	return OutcomeOtherError
}
