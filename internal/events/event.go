// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"sirkap_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quotes Domain Events
// =============================================================================

// QuoteCreated is published when a new quote lineage starts at version 1.
type QuoteCreated struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
	ActorID     uuid.UUID `json:"actorId"`
}

func (e QuoteCreated) EventName() string { return "quotes.quote.created" }

// QuoteFinalized is published when a draft is locked and issued to the client.
// Subscribers may render and cache the proposal document.
type QuoteFinalized struct {
	BaseEvent
	QuoteID       uuid.UUID `json:"quoteId"`
	QuoteNumber   string    `json:"quoteNumber"`
	VersionNumber int       `json:"versionNumber"`
	Status        string    `json:"status"`
	ActorID       uuid.UUID `json:"actorId"`
}

func (e QuoteFinalized) EventName() string { return "quotes.quote.finalized" }

// QuoteStatusChanged is published after every status change.
type QuoteStatusChanged struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	ActorID     uuid.UUID `json:"actorId"`
}

func (e QuoteStatusChanged) EventName() string { return "quotes.quote.status_changed" }

// QuoteRevised is published when a new editable version is spawned from a locked one.
type QuoteRevised struct {
	BaseEvent
	QuoteID       uuid.UUID `json:"quoteId"`
	ParentQuoteID uuid.UUID `json:"parentQuoteId"`
	QuoteNumber   string    `json:"quoteNumber"`
	VersionNumber int       `json:"versionNumber"`
	ActorID       uuid.UUID `json:"actorId"`
}

func (e QuoteRevised) EventName() string { return "quotes.quote.revised" }
