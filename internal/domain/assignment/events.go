package assignment

import (
	"time"

	"tourbook/internal/domain/shared/events"
)

type AssignmentUpserted struct {
	Key
	IsPrimary bool
	At        time.Time
}

func (e AssignmentUpserted) EventName() string     { return "assignment.upserted" }
func (e AssignmentUpserted) AggregateID() string   { return string(e.PackageID) }
func (e AssignmentUpserted) OccurredAt() time.Time { return e.At }

type AssignmentRemoved struct {
	Key
	At time.Time
}

func (e AssignmentRemoved) EventName() string     { return "assignment.removed" }
func (e AssignmentRemoved) AggregateID() string   { return string(e.PackageID) }
func (e AssignmentRemoved) OccurredAt() time.Time { return e.At }

type AssignmentFailed struct {
	Key
	Op    OpKind
	Error string
	At    time.Time
}

func (e AssignmentFailed) EventName() string     { return "assignment.failed" }
func (e AssignmentFailed) AggregateID() string   { return string(e.PackageID) }
func (e AssignmentFailed) OccurredAt() time.Time { return e.At }

// EventFor maps an outcome to the domain event describing it.
func EventFor(o Outcome) events.DomainEvent {
	if o.Err != nil {
		return AssignmentFailed{Key: o.Key, Op: o.Kind, Error: o.Error, At: o.FinishedAt}
	}
	if o.Kind == OpRemove {
		return AssignmentRemoved{Key: o.Key, At: o.FinishedAt}
	}
	return AssignmentUpserted{Key: o.Key, IsPrimary: o.IsPrimary, At: o.FinishedAt}
}
