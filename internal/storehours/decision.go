package storehours

import (
	"time"

	dErrors "storeops/pkg/domain-errors"
)

// WindowKind selects which access window a decision is computed for.
type WindowKind int

const (
	WindowLogin WindowKind = iota + 1
	WindowClock
)

func (k WindowKind) String() string {
	switch k {
	case WindowLogin:
		return "login"
	case WindowClock:
		return "clock"
	default:
		return "unknown"
	}
}

// Error codes carried by denials.
const (
	ErrorCodeStoreClosedLogin   = string(dErrors.CodeStoreClosedLogin)
	ErrorCodeOutsideClockWindow = string(dErrors.CodeOutsideClockWindow)
)

// Metadata describes the window a decision was evaluated against.
// All instants are expressed in the store's zone.
type Metadata struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	CurrentTime time.Time `json:"current_time"`
	Timezone    string    `json:"store_timezone"`
	OpeningTime string    `json:"opening_time"`
	ClosingTime string    `json:"closing_time"`
	ErrorCode   string    `json:"error_code,omitempty"`
}

// Decision is the outcome of a window check: Allowed, or Denied with a
// reason and error code. Metadata is nil when the store has no usable hours
// and the check failed open.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

func allowed(md *Metadata) Decision {
	return Decision{Allowed: true, Metadata: md}
}

func denied(reason, code string, md *Metadata) Decision {
	md.ErrorCode = code
	return Decision{Reason: reason, ErrorCode: code, Metadata: md}
}

// Err converts a denial into a domain error carrying the decision.
// Returns nil for allowed decisions.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	code := dErrors.Code(d.ErrorCode)
	if code == "" {
		code = dErrors.CodeOutsideClockWindow
	}
	return &dErrors.Error{Code: code, Message: d.Reason, Err: &DenialError{Decision: d}}
}

// DenialError wraps a denied Decision so transports can render its metadata.
type DenialError struct {
	Decision Decision
}

func (e *DenialError) Error() string {
	return e.Decision.Reason
}

// ErrorMetadata exposes the window metadata to the HTTP error envelope.
func (e *DenialError) ErrorMetadata() any {
	return e.Decision.Metadata
}
