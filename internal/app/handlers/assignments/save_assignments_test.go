package assignments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbook/internal/app/outbox"
	"tourbook/internal/app/policies"
	"tourbook/internal/app/policies/mocks"
	"tourbook/internal/domain/assignment"
	"tourbook/internal/domain/catalog"
	"tourbook/internal/infra/storage/memory"
)

type memOutbox struct {
	mu    sync.Mutex
	names []string
}

func (o *memOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, rec.Name)
	return nil
}

func (o *memOutbox) Flush(context.Context) error { return nil }

func edge(pkg, guide string) assignment.Key {
	return assignment.Key{PackageID: catalog.PackageID(pkg), GuideID: catalog.GuideID(guide)}
}

func TestSaveAssignments_PackageScope(t *testing.T) {
	store := new(mocks.MockAssignments)
	inv := new(mocks.MockInvalidator)
	box := &memOutbox{}

	store.On("Current", mock.Anything, assignment.PackageScope("p1")).
		Return([]assignment.Key{edge("p1", "7"), edge("p1", "9")}, nil)
	store.On("Upsert", mock.Anything, assignment.Assignment{Key: edge("p1", "7"), IsPrimary: true}).Return(nil).Once()
	store.On("Upsert", mock.Anything, assignment.Assignment{Key: edge("p1", "8")}).Return(errors.New("write timeout")).Once()
	store.On("Remove", mock.Anything, edge("p1", "9")).Return(nil).Once()
	inv.On("Invalidate", mock.Anything, policies.TopicDataChanged).Return(nil).Once()

	h := &SaveAssignmentsHandler{Assignments: store, Invalidator: inv, Outbox: box}
	report, err := h.Handle(context.Background(), SaveAssignmentsCommand{
		PackageID: "p1",
		Guides:    []GuideLink{{GuideID: "7", IsPrimary: true}, {GuideID: "8"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "write timeout", report.Outcomes[1].Error)
	assert.Equal(t, assignment.OpRemove, report.Outcomes[2].Kind)
	assert.Equal(t, []string{"assignment.upserted", "assignment.failed", "assignment.removed"}, box.names)
	store.AssertExpectations(t)
	inv.AssertExpectations(t)
}

func TestSaveAssignments_GuideScope(t *testing.T) {
	store := new(mocks.MockAssignments)
	store.On("Current", mock.Anything, assignment.GuideScope("g1")).Return(nil, nil)
	store.On("ForPackage", mock.Anything, catalog.PackageID("p1")).Return(nil, nil).Once()
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	h := &SaveAssignmentsHandler{Assignments: store}
	report, err := h.Handle(context.Background(), SaveAssignmentsCommand{
		GuideID:  "g1",
		Packages: []assignment.PackageLink{{PackageID: "p1", IsPrimary: true}, {PackageID: "p2"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, "g1", report.GuideID)
	store.AssertNumberOfCalls(t, "Upsert", 2)
	store.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ForPackage", mock.Anything, catalog.PackageID("p2"))
}

func TestSaveAssignments_GuideScopeDemotesStoredPrimary(t *testing.T) {
	store := new(mocks.MockAssignments)
	store.On("Current", mock.Anything, assignment.GuideScope("g2")).Return(nil, nil)
	store.On("ForPackage", mock.Anything, catalog.PackageID("p1")).Return([]assignment.Assignment{
		{Key: edge("p1", "g1"), IsPrimary: true},
		{Key: edge("p1", "g3")},
	}, nil)

	var order []assignment.Assignment
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		order = append(order, args.Get(1).(assignment.Assignment))
	})

	h := &SaveAssignmentsHandler{Assignments: store}
	report, err := h.Handle(context.Background(), SaveAssignmentsCommand{
		GuideID:  "g2",
		Packages: []assignment.PackageLink{{PackageID: "p1", IsPrimary: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, []assignment.Assignment{
		{Key: edge("p1", "g1"), IsPrimary: false},
		{Key: edge("p1", "g2"), IsPrimary: true},
	}, order)
	store.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestSaveAssignments_GuideScopeKeepsOnePrimaryInStore(t *testing.T) {
	store := memory.NewAssignmentStore()
	h := &SaveAssignmentsHandler{Assignments: store}
	ctx := context.Background()

	_, err := h.Handle(ctx, SaveAssignmentsCommand{PackageID: "p1", Guides: []GuideLink{{GuideID: "g1", IsPrimary: true}}})
	require.NoError(t, err)
	_, err = h.Handle(ctx, SaveAssignmentsCommand{GuideID: "g2", Packages: []assignment.PackageLink{{PackageID: "p1", IsPrimary: true}}})
	require.NoError(t, err)

	edges, err := store.ForPackage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []assignment.Assignment{
		{Key: edge("p1", "g1"), IsPrimary: false},
		{Key: edge("p1", "g2"), IsPrimary: true},
	}, edges)
}

func TestSaveAssignments_GuideScopePackageLoadFails(t *testing.T) {
	store := new(mocks.MockAssignments)
	down := errors.New("db down")
	store.On("ForPackage", mock.Anything, catalog.PackageID("p1")).Return(nil, down)

	h := &SaveAssignmentsHandler{Assignments: store}
	_, err := h.Handle(context.Background(), SaveAssignmentsCommand{
		GuideID:  "g2",
		Packages: []assignment.PackageLink{{PackageID: "p1", IsPrimary: true}},
	})

	require.ErrorIs(t, err, down)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSaveAssignments_AllFailedSkipsBroadcast(t *testing.T) {
	store := new(mocks.MockAssignments)
	inv := new(mocks.MockInvalidator)
	store.On("Current", mock.Anything, assignment.PackageScope("p1")).Return([]assignment.Key{edge("p1", "3")}, nil)
	store.On("Remove", mock.Anything, edge("p1", "3")).Return(errors.New("denied"))

	h := &SaveAssignmentsHandler{Assignments: store, Invalidator: inv}
	report, err := h.Handle(context.Background(), SaveAssignmentsCommand{PackageID: "p1"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	inv.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestSaveAssignments_CurrentLoadFails(t *testing.T) {
	store := new(mocks.MockAssignments)
	down := errors.New("db down")
	store.On("Current", mock.Anything, mock.Anything).Return(nil, down)

	h := &SaveAssignmentsHandler{Assignments: store}
	_, err := h.Handle(context.Background(), SaveAssignmentsCommand{PackageID: "p1"})

	require.ErrorIs(t, err, down)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSaveAssignmentsCommand_Validate(t *testing.T) {
	assert.ErrorIs(t, SaveAssignmentsCommand{}.Validate(), ErrScopeAmbiguous)
	assert.ErrorIs(t, SaveAssignmentsCommand{PackageID: "p", GuideID: "g"}.Validate(), ErrScopeAmbiguous)
	assert.NoError(t, SaveAssignmentsCommand{GuideID: "g"}.Validate())
}
