package domain

import (
	"fmt"
	"strings"

	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
)

// Status is the workflow state of one quotation version.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusSent     Status = "Sent"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusRevised  Status = "Revised"
)

// RoleAdmin may decide on any issued quote.
const RoleAdmin = "admin"

var knownStatuses = map[Status]struct{}{
	StatusDraft:    {},
	StatusSent:     {},
	StatusApproved: {},
	StatusRejected: {},
	StatusRevised:  {},
}

// ParseStatus accepts the canonical names case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	trimmed := strings.TrimSpace(raw)
	for s := range knownStatuses {
		if strings.EqualFold(string(s), trimmed) {
			return s, true
		}
	}
	return "", false
}

// IsEditable reports whether header and items may change.
func (s Status) IsEditable() bool { return s == StatusDraft }

// IsTerminal reports whether no further transition is allowed on this version.
func (s Status) IsTerminal() bool { return s == StatusApproved || s == StatusRejected }

// AwaitingDecision is true for issued versions. Revised behaves exactly like Sent.
func (s Status) AwaitingDecision() bool { return s == StatusSent || s == StatusRevised }

// IsDecision reports whether s is an outcome a client decision produces.
func (s Status) IsDecision() bool { return s == StatusApproved || s == StatusRejected }

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// HasRole checks role membership case-insensitively.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.HasRole(RoleAdmin) }

// TransitionInput is the state a status change is checked against.
type TransitionInput struct {
	Current        Status
	CreatedBy      uuid.UUID
	IsRevision     bool
	ItemCount      int
	TermsConfirmed bool
}

// EnsureEditable rejects header and item edits on any non-draft version.
func EnsureEditable(status Status) error {
	if status.IsEditable() {
		return nil
	}
	return apperr.Locked(fmt.Sprintf("quote is %s and can no longer be edited; create a revision instead", status))
}

// Transition validates moving a quote to the requested status and returns
// the status to persist. Finalizing (Sent or Revised requested) yields Sent
// for a first version and Revised for a revision.
func Transition(in TransitionInput, requested string, actor Actor) (Status, error) {
	target, ok := ParseStatus(requested)
	if !ok {
		return "", statusFieldError(fmt.Sprintf("must be one of [%s %s %s %s]", StatusSent, StatusRevised, StatusApproved, StatusRejected))
	}
	if target == StatusDraft {
		return "", statusFieldError("a quote cannot be moved back to Draft")
	}
	if in.Current.IsTerminal() {
		return "", apperr.Locked(fmt.Sprintf("quote is %s; the decision is final", in.Current))
	}

	if target.IsDecision() {
		return decide(in, target, actor)
	}
	return finalize(in)
}

func finalize(in TransitionInput) (Status, error) {
	if !in.Current.IsEditable() {
		return "", apperr.Locked(fmt.Sprintf("quote is already %s", in.Current))
	}

	var violations []apperr.FieldError
	if !in.TermsConfirmed {
		violations = append(violations, apperr.FieldError{Field: "termsConfirmed", Message: "terms and conditions must be reviewed before sending"})
	}
	if in.ItemCount < 1 {
		violations = append(violations, apperr.FieldError{Field: "items", Message: "a quote needs at least one line item before it can be sent"})
	}
	if len(violations) > 0 {
		return "", apperr.ValidationFields(violations)
	}

	if in.IsRevision {
		return StatusRevised, nil
	}
	return StatusSent, nil
}

func decide(in TransitionInput, target Status, actor Actor) (Status, error) {
	if !in.Current.AwaitingDecision() {
		return "", statusFieldError("quote must be sent before it can be approved or rejected")
	}
	if !actor.IsAdmin() && actor.ID != in.CreatedBy {
		return "", apperr.Forbidden("only an administrator or the quote creator can record a decision")
	}
	return target, nil
}

// EnsureRevisable checks the version-level precondition of a revision.
func EnsureRevisable(status Status) error {
	if status == StatusDraft {
		return apperr.Validation("draft quotes are edited directly and cannot be revised").
			WithDetails([]apperr.FieldError{{Field: "status", Message: "must not be Draft"}})
	}
	return nil
}

func statusFieldError(msg string) error {
	return apperr.ValidationFields([]apperr.FieldError{{Field: "status", Message: msg}})
}
