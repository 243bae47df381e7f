package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourbook/internal/app/policies"
	domainbooking "tourbook/internal/domain/booking"
)

var ErrBookingNotFound = errors.New("mongo: booking not found")

const statusPending = "pending"

// BookingStore persists composed requests, one document per request id.
type BookingStore struct {
	col *mongo.Collection
}

func NewBookingStore(db *mongo.Database) *BookingStore {
	return &BookingStore{col: db.Collection("bookings")}
}

func (s *BookingStore) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, s.col.Name(), s.col.Indexes(), bookingIndexes())
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetUnique(true)}}
}

// Create inserts the booking unless one already exists for the request id,
// in which case that booking is returned.
func (s *BookingStore) Create(ctx context.Context, req domainbooking.Request) (policies.CreateResult, error) {
	doc, err := newBookingDocument(req)
	if err != nil {
		return policies.CreateResult{}, err
	}
	filter := bson.M{"request_id": doc.RequestID}
	update := bson.M{"$setOnInsert": doc}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored bookingDocument
	err = s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// lost an upsert race on the same request id
		err = s.col.FindOne(ctx, filter).Decode(&stored)
	}
	if err != nil {
		return policies.CreateResult{}, err
	}
	return policies.CreateResult{BookingID: stored.ID, Status: stored.Status}, nil
}

func (s *BookingStore) ByID(ctx context.Context, id string) (domainbooking.Request, string, error) {
	var doc bookingDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainbooking.Request{}, "", ErrBookingNotFound
		}
		return domainbooking.Request{}, "", err
	}
	var req domainbooking.Request
	if err := json.Unmarshal(doc.Request, &req); err != nil {
		return domainbooking.Request{}, "", err
	}
	return req, doc.Status, nil
}

// Money is kept as decimal strings; the full request travels as its JSON
// encoding so prices survive without a custom BSON codec.
type bookingDocument struct {
	ID         string    `bson:"_id"`
	RequestID  string    `bson:"request_id"`
	Kind       string    `bson:"kind"`
	PackageID  string    `bson:"package_id,omitempty"`
	HotelID    string    `bson:"hotel_id,omitempty"`
	GuideID    string    `bson:"guide_id,omitempty"`
	GuestCount int       `bson:"guest_count"`
	GrandTotal string    `bson:"grand_total"`
	Status     string    `bson:"status"`
	Request    []byte    `bson:"request"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newBookingDocument(req domainbooking.Request) (bookingDocument, error) {
	if req.ID == "" {
		return bookingDocument{}, domainbooking.ErrRequestIDMissing
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return bookingDocument{}, err
	}
	return bookingDocument{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		Kind:       string(req.Kind),
		PackageID:  string(req.PackageID),
		HotelID:    string(req.HotelID),
		GuideID:    string(req.GuideID),
		GuestCount: req.GuestCount,
		GrandTotal: req.Price.GrandTotal.StringFixed(2),
		Status:     statusPending,
		Request:    raw,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

var _ policies.Bookings = (*BookingStore)(nil)
