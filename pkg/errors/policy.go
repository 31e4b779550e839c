package errors

import (
	"fmt"
	"log"
	"strings"
)

// Policy decides what happens to a failure at an I/O or media boundary.
// Handle returns nil when the failure is absorbed and the operation should
// continue as a no-op, or an error to hand back to the caller.
type Policy interface {
	Handle(op string, err error) error
	Name() string
}

// PolicyFunc adapts a function to the Policy interface
type PolicyFunc struct {
	name string
	fn   func(op string, err error) error
}

// NewPolicy creates a named policy from a handler function
func NewPolicy(name string, fn func(op string, err error) error) Policy {
	return PolicyFunc{name: name, fn: fn}
}

// Handle implements Policy
func (p PolicyFunc) Handle(op string, err error) error {
	if err == nil {
		return nil
	}
	// Permission failures abort the operation regardless of policy.
	if HasCode(err, ErrCodePermissionDenied) {
		return err
	}
	return p.fn(op, err)
}

// Name implements Policy
func (p PolicyFunc) Name() string {
	return p.name
}

const (
	PolicyIgnore  = "ignore"
	PolicySurface = "surface"
)

// Ignore logs the failure and lets the operation silently no-op. This is the
// default: a failed write or transport call leaves prior state unchanged.
var Ignore = NewPolicy(PolicyIgnore, func(op string, err error) error {
	log.Printf("[DEBUG] Ignoring %s failure: %v", op, err)
	return nil
})

// Surface returns every failure to the caller.
var Surface = NewPolicy(PolicySurface, func(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
})

// ParsePolicy resolves a policy by its configured name
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyIgnore:
		return Ignore, nil
	case PolicySurface:
		return Surface, nil
	default:
		return nil, ConfigError("errors.policy", fmt.Sprintf("unknown policy %q", name))
	}
}
