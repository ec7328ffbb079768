package audit

import (
	"context"
	"time"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers attestation events with audit significance:
	// identity creation, credential assignment/issuance, and every
	// verification evaluation step.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers game-play and profile events useful for
	// debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture every state mutation and
// verification evaluation. Keep it transport-agnostic so stores and sinks can
// fan out. The core only ever writes events; it never reads them back.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Actor is the address whose call triggered the event.
	Actor id.Address
	// Subject is the affected entity: an address for identity/credential
	// events, a treasure ID for placement and claims.
	Subject string
	Action  string
	// Decision carries the outcome of a verification evaluation step
	// ("true" or "false"); empty for plain mutations.
	Decision string
	Reason   string
	// Commitment is the hex role commitment published on issuance.
	Commitment string
	// Amount carries the numeric payload of the event: published salary,
	// treasure value, or remaining moves, depending on Action.
	Amount int64
	// Position is the grid cell for placement and move events.
	Position  int
	RequestID string
}

// Store persists emitted events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor id.Address) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}

type AuditEvent string

const (
	// Identity events
	EventDIDCreated  AuditEvent = "did_created"
	EventMetadataSet AuditEvent = "metadata_set"

	// Credential events
	EventCredentialAssigned AuditEvent = "credential_assigned"
	EventCredentialIssued   AuditEvent = "credential_issued"
	EventRoleVerified       AuditEvent = "role_verified"
	EventSalaryVerified     AuditEvent = "salary_verified"

	// Game events
	EventTreasurePlaced   AuditEvent = "treasure_placed"
	EventPlayerRegistered AuditEvent = "player_registered"
	EventPlayerMoved      AuditEvent = "player_moved"
	EventTreasureClaimed  AuditEvent = "treasure_claimed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventDIDCreated:         CategoryCompliance,
	EventCredentialAssigned: CategoryCompliance,
	EventCredentialIssued:   CategoryCompliance,
	EventRoleVerified:       CategoryCompliance,
	EventSalaryVerified:     CategoryCompliance,

	EventMetadataSet:      CategoryOperations,
	EventTreasurePlaced:   CategoryOperations,
	EventPlayerRegistered: CategoryOperations,
	EventPlayerMoved:      CategoryOperations,
	EventTreasureClaimed:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
