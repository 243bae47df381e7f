package assignments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/dto"
	"tourbook/internal/app/outbox"
	"tourbook/internal/app/policies"
	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/domain/shared/events"
)

const saveAssignmentsKey = "assignments.save"

var ErrScopeAmbiguous = errors.New("assignments: exactly one of package id or guide id required")

type GuideLink struct {
	GuideID   string
	IsPrimary bool
}

// SaveAssignmentsCommand replaces one side of the package/guide relation:
// the guide list of PackageID, or the package list of GuideID.
type SaveAssignmentsCommand struct {
	PackageID string
	Guides    []GuideLink

	GuideID  string
	Packages []assignment.PackageLink
}

func (c SaveAssignmentsCommand) Key() string { return saveAssignmentsKey }

func (c SaveAssignmentsCommand) Validate() error {
	if !c.scope().Valid() {
		return ErrScopeAmbiguous
	}
	return nil
}

func (c SaveAssignmentsCommand) scope() assignment.Scope {
	return assignment.Scope{PackageID: catalog.PackageID(c.PackageID), GuideID: catalog.GuideID(c.GuideID)}
}

func (c SaveAssignmentsCommand) desired() (assignment.DesiredSet, error) {
	if c.PackageID != "" {
		guides := make([]catalog.Guide, 0, len(c.Guides))
		for _, g := range c.Guides {
			guides = append(guides, catalog.Guide{ID: catalog.GuideID(g.GuideID), IsPrimary: g.IsPrimary})
		}
		return assignment.ForPackage(catalog.PackageID(c.PackageID), guides)
	}
	return assignment.ForGuide(catalog.GuideID(c.GuideID), c.Packages)
}

type SaveAssignmentsHandler struct {
	Assignments policies.Assignments
	Invalidator policies.Invalidator
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
}

// Handle diffs the edited list against what is stored and runs the single
// writes one by one. Individual failures are reported, not returned: the
// error result is reserved for failing to plan at all.
func (h *SaveAssignmentsHandler) Handle(ctx context.Context, cmd SaveAssignmentsCommand) (*dto.AssignmentReport, error) {
	scope := cmd.scope()
	if !scope.Valid() {
		return nil, ErrScopeAmbiguous
	}
	desired, err := h.desired(ctx, cmd)
	if err != nil {
		return nil, err
	}
	current, err := h.Assignments.Current(ctx, scope)
	if err != nil {
		h.logger().ErrorContext(ctx, "assignments load failed", "package_id", scope.PackageID, "guide_id", scope.GuideID, "error", err)
		return nil, fmt.Errorf("assignments: load current: %w", err)
	}

	plan := assignment.Reconcile(current, desired)
	log := h.logger().With("package_id", scope.PackageID, "guide_id", scope.GuideID)
	outcomes := assignment.Execute(ctx, h.Assignments, plan, func(o assignment.Outcome) {
		attrs := []any{"op", o.Kind, "edge_package", o.PackageID, "edge_guide", o.GuideID, "primary", o.IsPrimary}
		if o.Err != nil {
			log.WarnContext(ctx, "assignment operation failed", append(attrs, "error", o.Err)...)
			return
		}
		log.InfoContext(ctx, "assignment operation applied", attrs...)
	})

	evs := make([]events.DomainEvent, 0, len(outcomes))
	for _, o := range outcomes {
		evs = append(evs, assignment.EventFor(o))
	}
	enc := h.Encoder
	if enc == nil {
		enc = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, enc, evs); err != nil {
		log.WarnContext(ctx, "assignment events not recorded", "error", err)
	}

	report := dto.MapAssignmentReport(scope, outcomes)
	if report.Succeeded > 0 && h.Invalidator != nil {
		if err := h.Invalidator.Invalidate(ctx, policies.TopicDataChanged); err != nil {
			log.WarnContext(ctx, "data changed broadcast failed", "error", err)
		}
	}
	return &report, nil
}

// desired builds the target set. A guide-side edit only lists its own edges,
// so for every package it marks primary the stored edges of that package are
// loaded and competing primaries are demoted.
func (h *SaveAssignmentsHandler) desired(ctx context.Context, cmd SaveAssignmentsCommand) (assignment.DesiredSet, error) {
	desired, err := cmd.desired()
	if err != nil || cmd.GuideID == "" {
		return desired, err
	}
	var stored []assignment.Assignment
	for _, l := range cmd.Packages {
		if !l.IsPrimary {
			continue
		}
		edges, err := h.Assignments.ForPackage(ctx, l.PackageID)
		if err != nil {
			h.logger().ErrorContext(ctx, "package edges load failed", "package_id", l.PackageID, "guide_id", cmd.GuideID, "error", err)
			return assignment.DesiredSet{}, fmt.Errorf("assignments: load package %s: %w", l.PackageID, err)
		}
		stored = append(stored, edges...)
	}
	desired.DemotePeers(stored)
	return desired, nil
}

func (h *SaveAssignmentsHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[SaveAssignmentsCommand, *dto.AssignmentReport] = (*SaveAssignmentsHandler)(nil)
