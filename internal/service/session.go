package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
	"rental-desk-backend/internal/utils"
)

const (
	defaultListLimit  = 20
	maxListLimit      = 100
	searchLimit       = 50
	minQuickFillPhone = 10
	maxFuelLevel      = 100.0
)

type sessionService struct {
	repo     repository.SessionRepository
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewSessionService wires the session workflow. loc is the business timezone
// used for calendar dates and the late-fee due instant.
func NewSessionService(repo repository.SessionRepository, notifier Notifier, loc *time.Location) SessionService {
	if loc == nil {
		loc = time.Local
	}
	return &sessionService{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *sessionService) NewSession() *domain.RentalSession {
	return domain.NewRentalSession(s.now().In(s.loc))
}

// Save validates and persists s, creating it when it has no id. The booking
// total and the return charges are derived here on every save.
func (s *sessionService) Save(ctx context.Context, sess *domain.RentalSession) (*domain.RentalSession, error) {
	logger.EnterMethod("sessionService.Save", "id", sess.ID)

	if err := s.validateIntake(sess); err != nil {
		logger.ExitMethodWithError("sessionService.Save", err)
		return nil, err
	}

	if sess.ID == "" {
		if sess.SessionStatus == "" {
			sess.SessionStatus = domain.SessionStatusPickup
		}
		if sess.SessionStatus != domain.SessionStatusPickup {
			err := fmt.Errorf("%w: new sessions start in %s", ErrInvalidTransition, domain.SessionStatusPickup)
			logger.ExitMethodWithError("sessionService.Save", err)
			return nil, err
		}
		s.derive(sess)
		if err := s.repo.Create(ctx, sess); err != nil {
			logger.ExitMethodWithError("sessionService.Save", err)
			return nil, err
		}
		logger.WithSession(sess.ID).Info("Rental session created", "plate", sess.VehiclePlate)
		logger.ExitMethod("sessionService.Save")
		return sess, nil
	}

	existing, err := s.repo.GetByID(ctx, sess.ID)
	if err != nil {
		err = translate(err, "session "+sess.ID)
		logger.ExitMethodWithError("sessionService.Save", err)
		return nil, err
	}
	if existing.IsClosed() {
		logger.ExitMethodWithError("sessionService.Save", ErrSessionClosed)
		return nil, ErrSessionClosed
	}
	if sess.SessionStatus == "" {
		sess.SessionStatus = existing.SessionStatus
	}
	if sess.SessionStatus != existing.SessionStatus {
		if sess.SessionStatus == domain.SessionStatusClosed || !existing.SessionStatus.CanTransitionTo(sess.SessionStatus) {
			err := fmt.Errorf("%w: %s to %s", ErrInvalidTransition, existing.SessionStatus, sess.SessionStatus)
			logger.ExitMethodWithError("sessionService.Save", err)
			return nil, err
		}
	}
	sess.CreatedAt = existing.CreatedAt

	s.derive(sess)
	if err := s.repo.Update(ctx, sess); err != nil {
		err = translate(err, "session "+sess.ID)
		logger.ExitMethodWithError("sessionService.Save", err)
		return nil, err
	}
	logger.ExitMethod("sessionService.Save")
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*domain.RentalSession, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "session "+id)
	}
	return sess, nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "session "+id)
	}
	logger.WithSession(id).Info("Rental session deleted")
	return nil
}

func (s *sessionService) ListOpen(ctx context.Context, limit int) ([]domain.RentalSession, error) {
	return s.repo.ListByStatus(ctx, domain.OpenStatuses, repository.OrderByCreated, clampLimit(limit))
}

func (s *sessionService) ListClosed(ctx context.Context, limit int) ([]domain.RentalSession, error) {
	return s.repo.ListByStatus(ctx, []domain.SessionStatus{domain.SessionStatusClosed}, repository.OrderByUpdated, clampLimit(limit))
}

func (s *sessionService) Search(ctx context.Context, field domain.SearchField, query string) ([]domain.RentalSession, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("search query is required")
	}
	if !field.Valid() {
		return nil, invalidInput("unknown search field %q", field)
	}
	return s.repo.Search(ctx, field, query, searchLimit)
}

// QuickFill returns the contact details from the customer's latest rental.
func (s *sessionService) QuickFill(ctx context.Context, phone string) (*domain.CustomerProfile, error) {
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(phone) < minQuickFillPhone {
		return nil, invalidInput("phone must have at least %d characters", minQuickFillPhone)
	}
	latest, err := s.repo.LatestByPhone(ctx, phone)
	if err != nil {
		return nil, translate(err, "customer "+phone)
	}
	return &domain.CustomerProfile{
		Name:    latest.CustomerName,
		Phone:   latest.CustomerPhone,
		Email:   latest.CustomerEmail,
		Address: latest.CustomerAddress,
	}, nil
}

// UpdateReturn records return-inspection fields. A session still in pickup
// moves to return.
func (s *sessionService) UpdateReturn(ctx context.Context, id string, update domain.ReturnUpdate) (*domain.RentalSession, error) {
	logger.EnterMethod("sessionService.UpdateReturn", "id", id)

	if update.IsEmpty() {
		return nil, invalidInput("no return fields supplied")
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("sessionService.UpdateReturn", err)
		return nil, err
	}
	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	update.ApplyTo(sess)
	if err := validateReturn(sess); err != nil {
		logger.ExitMethodWithError("sessionService.UpdateReturn", err)
		return nil, err
	}
	if sess.SessionStatus == domain.SessionStatusPickup {
		sess.SessionStatus = domain.SessionStatusReturn
	}

	s.derive(sess)
	if err := s.repo.Update(ctx, sess); err != nil {
		err = translate(err, "session "+id)
		logger.ExitMethodWithError("sessionService.UpdateReturn", err)
		return nil, err
	}
	logger.WithSession(id).Info("Return recorded",
		"status", sess.SessionStatus,
		"subtotal_fees", sess.SubtotalFees,
		"deposit_refund", sess.DepositRefundAmount)
	logger.ExitMethod("sessionService.UpdateReturn")
	return sess, nil
}

func (s *sessionService) AdvanceStatus(ctx context.Context, id string, to domain.SessionStatus) (*domain.RentalSession, error) {
	if to == domain.SessionStatusClosed {
		return s.CloseRental(ctx, id)
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}
	if !sess.SessionStatus.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, sess.SessionStatus, to)
	}

	from := sess.SessionStatus
	sess.SessionStatus = to
	s.derive(sess)
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, translate(err, "session "+id)
	}
	logger.WithSession(id).Info("Session status advanced", "from", from, "to", to)
	return sess, nil
}

// CloseRental finalizes a completed return. The session walks the remaining
// statuses to closed and the customer is emailed a receipt; a failed email
// does not fail the close.
func (s *sessionService) CloseRental(ctx context.Context, id string) (*domain.RentalSession, error) {
	logger.EnterMethod("sessionService.CloseRental", "id", id)

	sess, err := s.Get(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("sessionService.CloseRental", err)
		return nil, err
	}
	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}
	if missing := missingReturnFields(sess); len(missing) > 0 {
		err := fmt.Errorf("%w: missing %s", ErrIncompleteReturn, strings.Join(missing, ", "))
		logger.ExitMethodWithError("sessionService.CloseRental", err)
		return nil, err
	}
	if err := validateReturn(sess); err != nil {
		return nil, err
	}

	path, ok := sess.SessionStatus.PathTo(domain.SessionStatusClosed)
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, sess.SessionStatus, domain.SessionStatusClosed)
	}
	log := logger.WithSession(id)
	for _, next := range path {
		log.Debug("Session status step", "from", sess.SessionStatus, "to", next)
		sess.SessionStatus = next
	}

	s.derive(sess)
	if err := s.repo.Update(ctx, sess); err != nil {
		err = translate(err, "session "+id)
		logger.ExitMethodWithError("sessionService.CloseRental", err)
		return nil, err
	}
	log.Info("Rental closed",
		"contract", sess.ContractID(),
		"final_total", sess.FinalTotal,
		"deposit_refund", sess.DepositRefundAmount)

	if s.notifier != nil {
		if err := s.notifier.SendReturnReceipt(ctx, sess); err != nil {
			log.Error("Failed to send return receipt", "error", err)
		}
	}

	logger.ExitMethod("sessionService.CloseRental")
	return sess, nil
}

// Preview prices a snapshot without persisting or mutating it.
func (s *sessionService) Preview(sess *domain.RentalSession) Preview {
	if sess == nil {
		return Preview{}
	}
	snapshot := *sess
	days := utils.RentalDays(snapshot.PickupDate, snapshot.ReturnDate)
	snapshot.TotalAmount = utils.BookingTotal(snapshot.DailyRate, days, snapshot.Deposit)
	snapshot.DamageFeeAmount = utils.RoundMoney(snapshot.DamageFeeAmount)
	return Preview{
		RentalDays:      days,
		TotalAmount:     snapshot.TotalAmount,
		DamageFeeAmount: snapshot.DamageFeeAmount,
		Reconciliation:  utils.Reconcile(&snapshot, s.loc),
	}
}

// derive recomputes every derived money field on sess. The clerk-entered
// damage fee is rounded to cents first so the subtotal stays the sum of the
// itemized fees.
func (s *sessionService) derive(sess *domain.RentalSession) {
	sess.DamageFeeAmount = utils.RoundMoney(sess.DamageFeeAmount)
	utils.PriceBooking(sess)
	utils.Reconcile(sess, s.loc).ApplyTo(sess)
}

func (s *sessionService) validateIntake(sess *domain.RentalSession) error {
	sess.CustomerName = strings.TrimSpace(sess.CustomerName)
	sess.CustomerPhone = strings.TrimSpace(sess.CustomerPhone)
	sess.VehiclePlate = strings.ToUpper(strings.TrimSpace(sess.VehiclePlate))

	var missing []string
	if sess.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if sess.CustomerPhone == "" {
		missing = append(missing, "customer_phone")
	}
	if sess.VehiclePlate == "" {
		missing = append(missing, "vehicle_plate")
	}
	if len(missing) > 0 {
		return invalidInput("missing %s", strings.Join(missing, ", "))
	}

	if sess.SessionStatus != "" {
		if _, err := domain.ParseSessionStatus(string(sess.SessionStatus)); err != nil {
			return invalidInput("%v", err)
		}
	}
	if _, err := utils.ParseDate(sess.PickupDate, s.loc); err != nil {
		return invalidInput("pickup_date: %v", err)
	}
	if _, err := utils.ParseDate(sess.ReturnDate, s.loc); err != nil {
		return invalidInput("return_date: %v", err)
	}
	if sess.Odometer < 0 {
		return invalidInput("odometer must not be negative")
	}
	if sess.FuelLevel < 0 || sess.FuelLevel > maxFuelLevel {
		return invalidInput("fuel_level must be between 0 and 100")
	}
	if sess.DailyRate < 0 || sess.Deposit < 0 {
		return invalidInput("daily_rate and deposit must not be negative")
	}
	if sess.ReturnPhotos == nil {
		sess.ReturnPhotos = []string{}
	}
	if sess.DamageLocations == nil {
		sess.DamageLocations = domain.DamageLocations{}
	}
	return validateReturn(sess)
}

// validateReturn rejects return inputs the fee engine does not guard against.
func validateReturn(sess *domain.RentalSession) error {
	if sess.ReturnOdometer != nil && *sess.ReturnOdometer != 0 && *sess.ReturnOdometer < sess.Odometer {
		return invalidInput("return_odometer %d is below pickup odometer %d", *sess.ReturnOdometer, sess.Odometer)
	}
	if sess.ReturnFuelLevel != nil && (*sess.ReturnFuelLevel < 0 || *sess.ReturnFuelLevel > maxFuelLevel) {
		return invalidInput("return_fuel_level must be between 0 and 100")
	}
	if sess.DamageFeeAmount < 0 {
		return invalidInput("damage_fee_amount must not be negative")
	}
	return nil
}

func missingReturnFields(sess *domain.RentalSession) []string {
	if sess.ReturnComplete() {
		return nil
	}
	var missing []string
	if sess.ReturnOdometer == nil || *sess.ReturnOdometer == 0 {
		missing = append(missing, "return_odometer")
	}
	if sess.ReturnFuelLevel == nil {
		missing = append(missing, "return_fuel_level")
	}
	if sess.ReturnTimestamp == nil {
		missing = append(missing, "return_timestamp")
	}
	if sess.ReturnSignatureData == "" {
		missing = append(missing, "return_signature_data")
	}
	if len(missing) == 0 {
		missing = append(missing, "id")
	}
	return missing
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// IsClientError reports whether err is caused by the request rather than
// the backing services.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, ErrIncompleteReturn) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnauthorized)
}
