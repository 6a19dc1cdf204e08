package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/folio/internal/session"
)

// Remote errors. StatusError unwraps to one of the status sentinels.
var (
	ErrSessionExpired  = errors.New("session expired")
	ErrConflict        = errors.New("conflicting change")
	ErrServer          = errors.New("server error")
	ErrUnexpected      = errors.New("unexpected response")
	ErrUnsupportedKind = errors.New("unsupported holding kind")
	ErrInvalidPatch    = errors.New("invalid patch")
	ErrNoRemote        = errors.New("no remote service configured")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrSessionExpired
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrUnexpected
	}
}

// Severity grades a Notice.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "none"
	}
}

// Notice is what the user is told about a failed remote call.
// Reauthenticate is set when the session must be dropped and the user has
// to log in again.
type Notice struct {
	Severity       Severity
	Message        string
	Reauthenticate bool
}

// Classify maps an error from this package or the session provider to a
// Notice. A canceled request is a normal outcome and yields SeverityNone.
func Classify(err error) Notice {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return Notice{Severity: SeverityNone}
	case errors.Is(err, ErrSessionExpired), errors.Is(err, session.ErrExpired):
		return Notice{Severity: SeverityWarning, Message: "your session has expired, please log in again", Reauthenticate: true}
	case errors.Is(err, session.ErrNotLoggedIn):
		return Notice{Severity: SeverityWarning, Message: "you are not logged in"}
	case errors.Is(err, ErrConflict):
		return Notice{Severity: SeverityWarning, Message: "the holding was changed elsewhere, reload and try again"}
	case errors.Is(err, ErrServer):
		return Notice{Severity: SeverityError, Message: "the holding service failed, try again later"}
	default:
		return Notice{Severity: SeverityError, Message: err.Error()}
	}
}
