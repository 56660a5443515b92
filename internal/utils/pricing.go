package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rental-desk-backend/internal/domain"
)

// timestampLayouts are tried in order when parsing a return timestamp.
// Layouts without a zone are read in the business location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 date-time. Values carrying an offset keep
// it; zone-less values are interpreted in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected ISO-8601 date-time", value)
}

// ParseDate parses a yyyy-mm-dd calendar date at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// RentalDays counts billable days between pickup and return dates, rounding
// any partial day up. A same-day or unparseable booking counts as one day.
func RentalDays(pickupDate, returnDate string) int {
	pickup, err := ParseDate(pickupDate, time.UTC)
	if err != nil {
		return 1
	}
	ret, err := ParseDate(returnDate, time.UTC)
	if err != nil {
		return 1
	}

	diff := ret.Sub(pickup)
	if diff < 0 {
		diff = -diff
	}
	const day = 24 * time.Hour
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	if days == 0 {
		return 1
	}
	return days
}

// BookingTotal is the amount agreed at pickup: the daily rate for every
// rental day plus the held deposit.
func BookingTotal(dailyRate float64, days int, deposit float64) float64 {
	total := decimal.NewFromFloat(dailyRate).
		Mul(decimal.NewFromInt(int64(days))).
		Add(decimal.NewFromFloat(deposit))
	return money(total)
}

// PriceBooking recomputes total_amount from the session's dates, rate and deposit.
func PriceBooking(s *domain.RentalSession) {
	if s == nil {
		return
	}
	s.TotalAmount = BookingTotal(s.DailyRate, RentalDays(s.PickupDate, s.ReturnDate), s.Deposit)
}

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(v float64) float64 {
	return money(decimal.NewFromFloat(v))
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
