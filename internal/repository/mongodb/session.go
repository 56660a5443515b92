package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
)

type sessionRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSessionRepository(coll *mongo.Collection) repository.SessionRepository {
	return &sessionRepository{coll: coll, now: time.Now}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.RentalSession) error {
	if r.coll == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	s.CreatedAt = &now
	s.UpdatedAt = &now
	normalize(s)

	logger.DatabaseCall("insertOne", sessionsCollection, "id", s.ID)
	_, err := r.coll.InsertOne(ctx, s)
	logger.DatabaseResult("insertOne", 1, err)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.RentalSession, error) {
	if r.coll == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *sessionRepository) Update(ctx context.Context, s *domain.RentalSession) error {
	if r.coll == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	prev := s.UpdatedAt
	now := r.now().UTC().Truncate(time.Millisecond)
	s.UpdatedAt = &now
	normalize(s)

	logger.DatabaseCall("replaceOne", sessionsCollection, "id", s.ID)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		s.UpdatedAt = prev
		logger.DatabaseResult("replaceOne", 0, err)
		return fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	logger.DatabaseResult("replaceOne", res.ModifiedCount, nil)
	if res.MatchedCount == 0 {
		s.UpdatedAt = prev
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if r.coll == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	logger.DatabaseCall("deleteOne", sessionsCollection, "id", id)
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.DatabaseResult("deleteOne", 0, err)
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	logger.DatabaseResult("deleteOne", res.DeletedCount, nil)
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) ListByStatus(ctx context.Context, statuses []domain.SessionStatus, orderBy repository.SessionOrder, limit int) ([]domain.RentalSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: sortField(orderBy), Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, statusFilter(statuses), opts)
}

func (r *sessionRepository) Search(ctx context.Context, field domain.SearchField, query string, limit int) ([]domain.RentalSession, error) {
	filter, err := searchFilter(field, query)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *sessionRepository) LatestByPhone(ctx context.Context, phone string) (*domain.RentalSession, error) {
	if r.coll == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, bson.M{"customer_phone": phone}, opts)
}

func (r *sessionRepository) ListDueBefore(ctx context.Context, status domain.SessionStatus, date string) ([]domain.RentalSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "return_date", Value: 1}})
	return r.find(ctx, dueBeforeFilter(status, date), opts)
}

func (r *sessionRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.RentalSession, error) {
	return decodeOne(r.coll.FindOne(ctx, filter, opts...))
}

func decodeOne(res *mongo.SingleResult) (*domain.RentalSession, error) {
	var s domain.RentalSession
	err := res.Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	normalize(&s)
	return &s, nil
}

func (r *sessionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.RentalSession, error) {
	if r.coll == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.RentalSession, error) {
	defer cursor.Close(ctx)

	sessions := []domain.RentalSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	for i := range sessions {
		normalize(&sessions[i])
	}
	return sessions, nil
}

func statusFilter(statuses []domain.SessionStatus) bson.M {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return bson.M{"session_status": bson.M{"$in": names}}
}

func searchFilter(field domain.SearchField, query string) (bson.M, error) {
	switch field {
	case domain.SearchByPlate:
		return bson.M{"vehicle_plate": strings.ToUpper(query)}, nil
	case domain.SearchByName:
		return bson.M{"customer_name": containsInsensitive(query)}, nil
	case domain.SearchByPhone:
		return bson.M{"customer_phone": containsInsensitive(query)}, nil
	default:
		return nil, fmt.Errorf("unsupported search field %q", field)
	}
}

func dueBeforeFilter(status domain.SessionStatus, date string) bson.M {
	return bson.M{
		"session_status": string(status),
		"return_date":    bson.M{"$lt": date, "$ne": ""},
	}
}

func containsInsensitive(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

func sortField(o repository.SessionOrder) string {
	if o == repository.OrderByUpdated {
		return "updated_at"
	}
	return "created_at"
}

// normalize replaces nil collections so documents and API payloads carry
// empty arrays instead of nulls.
func normalize(s *domain.RentalSession) {
	if s.ReturnPhotos == nil {
		s.ReturnPhotos = []string{}
	}
	if s.DamageLocations == nil {
		s.DamageLocations = domain.DamageLocations{}
	}
}
