package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tourbook/internal/app/policies"
	"tourbook/internal/domain/assignment"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/catalog"
)

// MockCatalog is a mock implementation of policies.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Package(ctx context.Context, id catalog.PackageID) (catalog.Package, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(catalog.Package)
	return pkg, args.Error(1)
}

func (m *MockCatalog) PackageGuides(ctx context.Context, id catalog.PackageID) ([]catalog.Guide, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Guide), args.Error(1)
}

func (m *MockCatalog) PackageHotels(ctx context.Context, id catalog.PackageID) ([]catalog.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Hotel), args.Error(1)
}

func (m *MockCatalog) Hotel(ctx context.Context, id catalog.HotelID) (catalog.Hotel, error) {
	args := m.Called(ctx, id)
	hotel, _ := args.Get(0).(catalog.Hotel)
	return hotel, args.Error(1)
}

func (m *MockCatalog) RoomsForHotel(ctx context.Context, id catalog.HotelID) ([]catalog.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Room), args.Error(1)
}

func (m *MockCatalog) RoomsForPackageHotel(ctx context.Context, pkg catalog.PackageID, hotel catalog.HotelID) ([]catalog.Room, error) {
	args := m.Called(ctx, pkg, hotel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Room), args.Error(1)
}

func (m *MockCatalog) Offer(ctx context.Context, id catalog.OfferID) (*catalog.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Offer), args.Error(1)
}

// MockBookings is a mock implementation of policies.Bookings
type MockBookings struct {
	mock.Mock
}

func (m *MockBookings) Create(ctx context.Context, req domainbooking.Request) (policies.CreateResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(policies.CreateResult)
	return res, args.Error(1)
}

// MockAssignments is a mock implementation of policies.Assignments
type MockAssignments struct {
	mock.Mock
}

func (m *MockAssignments) Upsert(ctx context.Context, a assignment.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAssignments) Remove(ctx context.Context, key assignment.Key) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockAssignments) Current(ctx context.Context, scope assignment.Scope) ([]assignment.Key, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]assignment.Key), args.Error(1)
}

func (m *MockAssignments) ForPackage(ctx context.Context, id catalog.PackageID) ([]assignment.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]assignment.Assignment), args.Error(1)
}

// MockInvalidator is a mock implementation of policies.Invalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, topic string) error {
	return m.Called(ctx, topic).Error(0)
}

var (
	_ policies.Catalog     = (*MockCatalog)(nil)
	_ policies.Bookings    = (*MockBookings)(nil)
	_ policies.Assignments = (*MockAssignments)(nil)
	_ policies.Invalidator = (*MockInvalidator)(nil)
)
