package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
)

// sessionColumns is the column order shared by every insert, update and select.
var sessionColumns = []string{
	"id", "session_status",
	"customer_name", "customer_phone", "customer_email", "customer_address",
	"passport_url", "license_url",
	"vehicle_plate", "vehicle_type",
	"photo_front", "photo_rear", "photo_left", "photo_right",
	"odometer", "fuel_level", "pickup_date", "return_date",
	"daily_rate", "deposit", "total_amount", "signature_data",
	"return_odometer", "return_fuel_level", "return_timestamp",
	"new_damage", "damage_notes", "damage_locations", "excessive_cleaning",
	"return_photos", "return_signature_data",
	"allowed_mileage", "rate_per_mile", "refuel_price_per_gallon", "tank_capacity_gallons",
	"hourly_late_fee", "daily_late_fee", "cleaning_fee",
	"damage_fee_amount", "late_fee_amount", "mileage_fee_amount", "fuel_fee_amount",
	"cleaning_fee_amount", "subtotal_fees", "final_total", "deposit_refund_amount",
	"created_at", "updated_at",
}

var (
	selectSessionSQL = "SELECT " + selectList() + " FROM rental_sessions"
	insertSessionSQL = insertStatement()
	updateSessionSQL = updateStatement()
)

func selectList() string {
	cols := make([]string, len(sessionColumns))
	for i, c := range sessionColumns {
		switch c {
		case "pickup_date", "return_date":
			cols[i] = fmt.Sprintf("COALESCE(%s::text, '')", c)
		default:
			cols[i] = c
		}
	}
	return strings.Join(cols, ", ")
}

func insertStatement() string {
	placeholders := make([]string, len(sessionColumns))
	for i := range sessionColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO rental_sessions (%s) VALUES (%s)",
		strings.Join(sessionColumns, ", "), strings.Join(placeholders, ", "))
}

// updateStatement sets every column but id and created_at; id is the last argument.
func updateStatement() string {
	var sets []string
	n := 1
	for _, c := range sessionColumns {
		if c == "id" || c == "created_at" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c, n))
		n++
	}
	return fmt.Sprintf("UPDATE rental_sessions SET %s WHERE id = $%d", strings.Join(sets, ", "), n)
}

type sessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db, now: time.Now}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.RentalSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.now().UTC()
	s.CreatedAt = &now
	s.UpdatedAt = &now

	logger.DatabaseCall("INSERT", "rental_sessions", "id", s.ID)
	res, err := r.db.ExecContext(ctx, insertSessionSQL, sessionArgs(s)...)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return fmt.Errorf("failed to insert session: %w", err)
	}
	rows, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", rows, nil)
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.RentalSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, selectSessionSQL+" WHERE id = $1", id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return s, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *domain.RentalSession) error {
	now := r.now().UTC()
	prev := s.UpdatedAt
	s.UpdatedAt = &now

	args := sessionArgs(s)
	// drop id (first) and created_at (second to last), then append id for WHERE
	setArgs := make([]any, 0, len(args)-1)
	for i, a := range args {
		if sessionColumns[i] == "id" || sessionColumns[i] == "created_at" {
			continue
		}
		setArgs = append(setArgs, a)
	}
	setArgs = append(setArgs, s.ID)

	logger.DatabaseCall("UPDATE", "rental_sessions", "id", s.ID)
	res, err := r.db.ExecContext(ctx, updateSessionSQL, setArgs...)
	if err != nil {
		s.UpdatedAt = prev
		logger.DatabaseResult("UPDATE", 0, err)
		return fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	if rows == 0 {
		s.UpdatedAt = prev
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	logger.DatabaseCall("DELETE", "rental_sessions", "id", id)
	res, err := r.db.ExecContext(ctx, "DELETE FROM rental_sessions WHERE id = $1", id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) ListByStatus(ctx context.Context, statuses []domain.SessionStatus, orderBy repository.SessionOrder, limit int) ([]domain.RentalSession, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	query := selectSessionSQL + " WHERE session_status = ANY($1) ORDER BY " + orderColumn(orderBy) + " DESC LIMIT $2"
	return r.query(ctx, query, pq.Array(names), limit)
}

func (r *sessionRepository) Search(ctx context.Context, field domain.SearchField, q string, limit int) ([]domain.RentalSession, error) {
	var where string
	var arg string
	switch field {
	case domain.SearchByPlate:
		where, arg = "vehicle_plate = $1", strings.ToUpper(q)
	case domain.SearchByName:
		where, arg = "customer_name ILIKE $1", "%"+escapeLike(q)+"%"
	case domain.SearchByPhone:
		where, arg = "customer_phone ILIKE $1", "%"+escapeLike(q)+"%"
	default:
		return nil, fmt.Errorf("unsupported search field %q", field)
	}

	query := selectSessionSQL + " WHERE " + where + " ORDER BY created_at DESC LIMIT $2"
	return r.query(ctx, query, arg, limit)
}

func (r *sessionRepository) LatestByPhone(ctx context.Context, phone string) (*domain.RentalSession, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL+" WHERE customer_phone = $1 ORDER BY created_at DESC LIMIT 1", phone)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) ListDueBefore(ctx context.Context, status domain.SessionStatus, date string) ([]domain.RentalSession, error) {
	query := selectSessionSQL + " WHERE session_status = $1 AND return_date < $2 ORDER BY return_date ASC"
	return r.query(ctx, query, string(status), date)
}

func (r *sessionRepository) query(ctx context.Context, query string, args ...any) ([]domain.RentalSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.RentalSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.RentalSession, error) {
	var s domain.RentalSession
	var status string
	var photos pq.StringArray
	err := row.Scan(
		&s.ID, &status,
		&s.CustomerName, &s.CustomerPhone, &s.CustomerEmail, &s.CustomerAddress,
		&s.PassportURL, &s.LicenseURL,
		&s.VehiclePlate, &s.VehicleType,
		&s.PhotoFront, &s.PhotoRear, &s.PhotoLeft, &s.PhotoRight,
		&s.Odometer, &s.FuelLevel, &s.PickupDate, &s.ReturnDate,
		&s.DailyRate, &s.Deposit, &s.TotalAmount, &s.SignatureData,
		&s.ReturnOdometer, &s.ReturnFuelLevel, &s.ReturnTimestamp,
		&s.NewDamage, &s.DamageNotes, &s.DamageLocations, &s.ExcessiveCleaning,
		&photos, &s.ReturnSignatureData,
		&s.AllowedMileage, &s.RatePerMile, &s.RefuelPricePerGallon, &s.TankCapacityGallons,
		&s.HourlyLateFee, &s.DailyLateFee, &s.CleaningFee,
		&s.DamageFeeAmount, &s.LateFeeAmount, &s.MileageFeeAmount, &s.FuelFeeAmount,
		&s.CleaningFeeAmount, &s.SubtotalFees, &s.FinalTotal, &s.DepositRefundAmount,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SessionStatus = domain.SessionStatus(status)
	s.ReturnPhotos = []string(photos)
	if s.ReturnPhotos == nil {
		s.ReturnPhotos = []string{}
	}
	return &s, nil
}

// sessionArgs lists the values of s in sessionColumns order.
func sessionArgs(s *domain.RentalSession) []any {
	photos := s.ReturnPhotos
	if photos == nil {
		photos = []string{}
	}
	return []any{
		s.ID, string(s.SessionStatus),
		s.CustomerName, s.CustomerPhone, s.CustomerEmail, s.CustomerAddress,
		s.PassportURL, s.LicenseURL,
		s.VehiclePlate, s.VehicleType,
		s.PhotoFront, s.PhotoRear, s.PhotoLeft, s.PhotoRight,
		s.Odometer, s.FuelLevel, nullableDate(s.PickupDate), nullableDate(s.ReturnDate),
		s.DailyRate, s.Deposit, s.TotalAmount, s.SignatureData,
		s.ReturnOdometer, s.ReturnFuelLevel, s.ReturnTimestamp,
		s.NewDamage, s.DamageNotes, s.DamageLocations, s.ExcessiveCleaning,
		pq.Array(photos), s.ReturnSignatureData,
		s.AllowedMileage, s.RatePerMile, s.RefuelPricePerGallon, s.TankCapacityGallons,
		s.HourlyLateFee, s.DailyLateFee, s.CleaningFee,
		s.DamageFeeAmount, s.LateFeeAmount, s.MileageFeeAmount, s.FuelFeeAmount,
		s.CleaningFeeAmount, s.SubtotalFees, s.FinalTotal, s.DepositRefundAmount,
		s.CreatedAt, s.UpdatedAt,
	}
}

func nullableDate(d string) any {
	if d == "" {
		return nil
	}
	return d
}

func orderColumn(o repository.SessionOrder) string {
	if o == repository.OrderByUpdated {
		return "updated_at"
	}
	return "created_at"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
