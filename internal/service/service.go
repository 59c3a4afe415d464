// Package service applies the program visibility and authorization policy
// on top of a Store. Every operation takes the resolved Caller and returns
// one of the package's sentinel errors or a *ValidationError on failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
)

// Caller is the identity the transport resolved for a request.
type Caller struct {
	Authenticated bool
	Username      string
	Role          policy.Role
}

// Anonymous is the caller for requests without valid credentials.
func Anonymous() Caller { return Caller{} }

// NewCaller returns an authenticated caller.
func NewCaller(username string, role policy.Role) Caller {
	return Caller{Authenticated: true, Username: username, Role: role}
}

func (c Caller) authorize(op policy.Operation) error {
	if !c.Authenticated {
		return ErrAuthenticationRequired
	}
	if !policy.Can(c.Role, op) {
		return ErrPermissionDenied
	}
	return nil
}

// Service implements the programs, organizations and course code operations.
type Service struct {
	store  Store
	images ImageStore
}

// New creates a Service. images may be nil when banner uploads are disabled.
func New(store Store, images ImageStore) *Service {
	return &Service{store: store, images: images}
}

// Health reports whether the backing store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// Field length limits, matching the column sizes the API advertises.
const (
	maxNameLength        = 255
	maxSubtitleLength    = 255
	maxKeyLength         = 64
	maxDisplayNameLength = 128
)

// requiredString validates a required, non-blank string field and returns
// its value. ok is false when a message was recorded.
func requiredString(v *ValidationError, field string, in models.OptionalString, maxLen int) (string, bool) {
	switch {
	case !in.Present:
		v.Add(field, MsgRequired)
		return "", false
	case in.Null:
		v.Add(field, MsgNull)
		return "", false
	case strings.TrimSpace(in.Value) == "":
		v.Add(field, MsgBlank)
		return "", false
	case utf8.RuneCountInString(in.Value) > maxLen:
		v.Add(field, msgMaxLength(maxLen))
		return "", false
	}
	return in.Value, true
}

// choiceValue renders the submitted value the way choice errors quote it.
func choiceValue(in models.OptionalString) string {
	if in.Null {
		return "null"
	}
	return in.Value
}

// translate maps store errors onto the service's error values.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	var dup *db.DuplicateError
	if errors.As(err, &dup) {
		return fieldError(dup.Field, MsgUnique)
	}
	return err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.Is(err, ErrNotFound) || errors.As(err, &verr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
