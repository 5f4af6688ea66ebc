package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

const collectionBookings = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

// Create inserts a new booking document.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIdempotencyKey retrieves a booking that was created with the given key.
func (r *BookingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

// MarkConfirmed records the calendar event and moves the booking to confirmed.
func (r *BookingRepository) MarkConfirmed(ctx context.Context, id, eventID string, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"status":            string(domain.BookingStatusConfirmed),
			"confirmed":         true,
			"calendar_event_id": eventID,
			"confirmed_at":      at.UTC(),
			"updated_at":        at.UTC(),
		},
		"$unset": bson.M{"calendar_error": ""},
	})
}

// MarkCalendarFailed keeps the booking pending and stores why the calendar
// write failed.
func (r *BookingRepository) MarkCalendarFailed(ctx context.Context, id, reason string, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"calendar_error": reason,
			"updated_at":     at.UTC(),
		},
	})
}

// MarkConfirmationFailed keeps the booking pending but stores the calendar
// event that was created for it, so staff can reconcile the two.
func (r *BookingRepository) MarkConfirmationFailed(ctx context.Context, id, eventID, reason string, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"calendar_event_id": eventID,
			"calendar_error":    reason,
			"updated_at":        at.UTC(),
		},
	})
}

// ListUnconfirmed returns pending bookings whose calendar write failed or
// whose confirmation was lost, oldest first.
func (r *BookingRepository) ListUnconfirmed(ctx context.Context) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, unconfirmedFilter(), opts)
}

func unconfirmedFilter() bson.M {
	nonEmpty := bson.M{"$exists": true, "$ne": ""}
	return bson.M{
		"status": string(domain.BookingStatusPending),
		"$or": bson.A{
			bson.M{"calendar_error": nonEmpty},
			bson.M{"calendar_event_id": nonEmpty},
		},
	}
}

// List returns a page of bookings ordered by appointment date and the total
// number of matches.
func (r *BookingRepository) List(ctx context.Context, f ports.ListBookingsFilter) ([]*domain.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bookingListFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "appointment_date", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// EnsureIndexes creates necessary indexes on the bookings collection.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "appointment_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func bookingListFilter(f ports.ListBookingsFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	date := bson.M{}
	if !f.DateFrom.IsZero() {
		date["$gte"] = f.DateFrom.UTC()
	}
	if !f.DateTo.IsZero() {
		date["$lt"] = f.DateTo.UTC()
	}
	if len(date) > 0 {
		filter["appointment_date"] = date
	}
	return filter
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.col.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Booking, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Booking, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return items, nil
}

func (r *BookingRepository) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}
