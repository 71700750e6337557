package remote

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/vbonduro/emulsion/internal/domain"
)

// Kind classifies why a remote call failed.
type Kind int

const (
	// KindUnavailable covers transport failures, timeouts, 5xx responses
	// and bodies that could not be decoded.
	KindUnavailable Kind = iota
	// KindRejected is a 4xx other than 422: missing entity, conflict,
	// malformed request.
	KindRejected
	// KindValidation is a 422 with per-field reasons.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindValidation:
		return "validation"
	default:
		return "unavailable"
	}
}

// Error is the failure of one remote call.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Detail string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch {
	case e.Detail != "":
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "status %d", e.Status)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
		}
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a remote failure, or false if err did not come
// from this package.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// statusError builds the Error for a non-2xx response.
func statusError(op string, status int, body errorBody) *Error {
	e := &Error{Op: op, Status: status, Detail: body.Detail, Fields: body.Fields}
	switch {
	case status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.Err = &domain.ValidationError{Fields: body.Fields}
	case status == http.StatusNotFound:
		e.Kind = KindRejected
		e.Err = domain.ErrNotFound
	case status >= 400 && status < 500:
		e.Kind = KindRejected
	default:
		e.Kind = KindUnavailable
	}
	return e
}

type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}
