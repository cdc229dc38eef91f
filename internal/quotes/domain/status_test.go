package domain

import (
	"testing"

	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestEnsureEditableLocksEveryIssuedStatus(t *testing.T) {
	if err := EnsureEditable(StatusDraft); err != nil {
		t.Fatalf("draft must be editable, got %v", err)
	}
	for _, s := range []Status{StatusSent, StatusApproved, StatusRejected, StatusRevised} {
		if err := EnsureEditable(s); !apperr.Is(err, apperr.KindLocked) {
			t.Fatalf("expected Locked for %s, got %v", s, err)
		}
	}
}

func TestTransitionFinalizeRequiresTermsAndItems(t *testing.T) {
	creator := uuid.New()
	in := TransitionInput{Current: StatusDraft, CreatedBy: creator}

	_, err := Transition(in, "Sent", Actor{ID: creator})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := err.(*apperr.Error).Details.([]apperr.FieldError)
	if len(fields) != 2 {
		t.Fatalf("expected both termsConfirmed and items violations, got %+v", fields)
	}

	in.TermsConfirmed = true
	in.ItemCount = 1
	got, err := Transition(in, "sent", Actor{ID: creator})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusSent {
		t.Fatalf("expected Sent, got %s", got)
	}
}

func TestTransitionFinalizeRevisionYieldsRevised(t *testing.T) {
	in := TransitionInput{Current: StatusDraft, IsRevision: true, ItemCount: 2, TermsConfirmed: true}

	got, err := Transition(in, "Sent", Actor{ID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusRevised {
		t.Fatalf("expected Revised, got %s", got)
	}
}

func TestTransitionDecisionAuthorization(t *testing.T) {
	creator := uuid.New()
	other := uuid.New()

	for _, current := range []Status{StatusSent, StatusRevised} {
		in := TransitionInput{Current: current, CreatedBy: creator}

		if _, err := Transition(in, "Approved", Actor{ID: other, Roles: []string{"sales"}}); !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("expected Forbidden for non-creator on %s, got %v", current, err)
		}
		if got, err := Transition(in, "Approved", Actor{ID: creator, Roles: []string{"sales"}}); err != nil || got != StatusApproved {
			t.Fatalf("expected creator approval on %s, got %s %v", current, got, err)
		}
		if got, err := Transition(in, "Rejected", Actor{ID: other, Roles: []string{"Admin"}}); err != nil || got != StatusRejected {
			t.Fatalf("expected admin rejection on %s, got %s %v", current, got, err)
		}
	}
}

func TestTransitionTerminalStatesAreLocked(t *testing.T) {
	creator := uuid.New()
	for _, current := range []Status{StatusApproved, StatusRejected} {
		for _, target := range []string{"Sent", "Approved", "Rejected", "Revised"} {
			in := TransitionInput{Current: current, CreatedBy: creator, ItemCount: 1, TermsConfirmed: true}
			if _, err := Transition(in, target, Actor{ID: creator, Roles: []string{RoleAdmin}}); !apperr.Is(err, apperr.KindLocked) {
				t.Fatalf("expected Locked for %s -> %s, got %v", current, target, err)
			}
		}
	}
}

func TestTransitionRejectsInvalidTargets(t *testing.T) {
	creator := uuid.New()
	in := TransitionInput{Current: StatusSent, CreatedBy: creator}

	for _, target := range []string{"Archived", "", "Draft"} {
		if _, err := Transition(in, target, Actor{ID: creator}); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %q, got %v", target, err)
		}
	}
}

func TestTransitionDecisionOnDraftIsValidationError(t *testing.T) {
	creator := uuid.New()
	in := TransitionInput{Current: StatusDraft, CreatedBy: creator}

	if _, err := Transition(in, "Approved", Actor{ID: creator}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransitionResendIsLocked(t *testing.T) {
	in := TransitionInput{Current: StatusSent, ItemCount: 1, TermsConfirmed: true}
	if _, err := Transition(in, "Sent", Actor{ID: uuid.New()}); !apperr.Is(err, apperr.KindLocked) {
		t.Fatalf("expected Locked, got %v", err)
	}
}

func TestEnsureRevisable(t *testing.T) {
	if err := EnsureRevisable(StatusDraft); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for draft, got %v", err)
	}
	for _, s := range []Status{StatusSent, StatusApproved, StatusRejected, StatusRevised} {
		if err := EnsureRevisable(s); err != nil {
			t.Fatalf("expected %s to be revisable, got %v", s, err)
		}
	}
}
