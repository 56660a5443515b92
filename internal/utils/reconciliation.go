package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"rental-desk-backend/internal/domain"
)

const (
	// LateGraceMinutes is how far past the due instant a return may land
	// before any late fee accrues.
	LateGraceMinutes = 29
	// LateDailyThresholdHours is the lateness, in billed hours, at which the
	// late fee switches from the hourly to the daily rate.
	LateDailyThresholdHours = 24
)

// FeeSchedule is the rate schedule in force for a session, with defaults
// substituted for absent values.
type FeeSchedule struct {
	// AllowedMileage is not defaulted: a session without an allowance
	// accrues no mileage fee.
	AllowedMileage       int
	RatePerMile          float64
	RefuelPricePerGallon float64
	TankCapacityGallons  float64
	HourlyLateFee        float64
	DailyLateFee         float64
	CleaningFee          float64
}

// ResolveFeeSchedule reads the rate schedule off s. A nil or zero rate falls
// back to its default.
func ResolveFeeSchedule(s *domain.RentalSession) FeeSchedule {
	fs := FeeSchedule{
		RatePerMile:          orDefault(s.RatePerMile, domain.DefaultRatePerMile),
		RefuelPricePerGallon: orDefault(s.RefuelPricePerGallon, domain.DefaultRefuelPricePerGallon),
		TankCapacityGallons:  orDefault(s.TankCapacityGallons, domain.DefaultTankCapacityGallons),
		HourlyLateFee:        orDefault(s.HourlyLateFee, domain.DefaultHourlyLateFee),
		DailyLateFee:         orDefault(s.DailyLateFee, domain.DefaultDailyLateFee),
		CleaningFee:          orDefault(s.CleaningFee, domain.DefaultCleaningFee),
	}
	if s.AllowedMileage != nil {
		fs.AllowedMileage = *s.AllowedMileage
	}
	return fs
}

// Reconciliation holds the return-time charges derived from a session.
type Reconciliation struct {
	LateFeeAmount       float64 `json:"late_fee_amount"`
	MileageFeeAmount    float64 `json:"mileage_fee_amount"`
	FuelFeeAmount       float64 `json:"fuel_fee_amount"`
	CleaningFeeAmount   float64 `json:"cleaning_fee_amount"`
	SubtotalFees        float64 `json:"subtotal_fees"`
	FinalTotal          float64 `json:"final_total"`
	DepositRefundAmount float64 `json:"deposit_refund_amount"`
}

// Reconcile derives the late, mileage, fuel and cleaning fees, the fee
// subtotal, the final total and the deposit refund for s. It reads s without
// modifying it, never fails, and treats every missing input as a zero
// contribution. Calendar dates are interpreted in loc.
//
// Each fee is rounded to cents before aggregation so the subtotal is exactly
// the sum of the itemized fees.
func Reconcile(s *domain.RentalSession, loc *time.Location) Reconciliation {
	if s == nil {
		return Reconciliation{}
	}
	if loc == nil {
		loc = time.Local
	}
	fs := ResolveFeeSchedule(s)

	late := roundCents(LateFee(s.ReturnDate, s.ReturnTimestamp, fs, loc))
	mileage := roundCents(MileageFee(s, fs))
	fuel := roundCents(FuelFee(s, fs))
	cleaning := roundCents(CleaningFee(s, fs))
	damage := roundCents(decimal.NewFromFloat(s.DamageFeeAmount))

	subtotal := late.Add(mileage).Add(fuel).Add(damage).Add(cleaning)
	finalTotal := decimal.NewFromFloat(s.TotalAmount).Add(subtotal)
	refund := decimal.Max(decimal.Zero, decimal.NewFromFloat(s.Deposit).Sub(subtotal))

	return Reconciliation{
		LateFeeAmount:       late.InexactFloat64(),
		MileageFeeAmount:    mileage.InexactFloat64(),
		FuelFeeAmount:       fuel.InexactFloat64(),
		CleaningFeeAmount:   cleaning.InexactFloat64(),
		SubtotalFees:        subtotal.InexactFloat64(),
		FinalTotal:          money(finalTotal),
		DepositRefundAmount: money(refund),
	}
}

// ApplyTo writes the derived fields into s. The clerk-entered damage fee is
// left untouched.
func (r Reconciliation) ApplyTo(s *domain.RentalSession) {
	s.LateFeeAmount = r.LateFeeAmount
	s.MileageFeeAmount = r.MileageFeeAmount
	s.FuelFeeAmount = r.FuelFeeAmount
	s.CleaningFeeAmount = r.CleaningFeeAmount
	s.SubtotalFees = r.SubtotalFees
	s.FinalTotal = r.FinalTotal
	s.DepositRefundAmount = r.DepositRefundAmount
}

// DueInstant is the last second of the return date in loc.
func DueInstant(returnDate string, loc *time.Location) (time.Time, bool) {
	d, err := ParseDate(returnDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, 0, loc), true
}

// LateFee bills lateness past the due instant. Within the grace window the
// fee is zero; otherwise whole started hours are billed hourly until they
// reach the daily threshold, after which whole started days are billed daily.
func LateFee(returnDate string, returnedAt *time.Time, fs FeeSchedule, loc *time.Location) decimal.Decimal {
	if returnedAt == nil || returnDate == "" {
		return decimal.Zero
	}
	due, ok := DueInstant(returnDate, loc)
	if !ok {
		return decimal.Zero
	}

	minutes := floorMinutes(returnedAt.Sub(due))
	if minutes <= LateGraceMinutes {
		return decimal.Zero
	}

	hours := ceilDiv(minutes, 60)
	if hours >= LateDailyThresholdHours {
		days := ceilDiv(hours, LateDailyThresholdHours)
		return decimal.NewFromInt(days).Mul(decimal.NewFromFloat(fs.DailyLateFee))
	}
	return decimal.NewFromInt(hours).Mul(decimal.NewFromFloat(fs.HourlyLateFee))
}

// MileageFee bills miles driven beyond the allowance.
func MileageFee(s *domain.RentalSession, fs FeeSchedule) decimal.Decimal {
	if s.ReturnOdometer == nil || *s.ReturnOdometer == 0 || s.Odometer == 0 || fs.AllowedMileage == 0 {
		return decimal.Zero
	}
	overage := *s.ReturnOdometer - s.Odometer - fs.AllowedMileage
	if overage <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(overage)).Mul(decimal.NewFromFloat(fs.RatePerMile))
}

// FuelFee bills the gallons needed to bring the tank back to its pickup level.
func FuelFee(s *domain.RentalSession, fs FeeSchedule) decimal.Decimal {
	if s.ReturnFuelLevel == nil || s.FuelLevel == 0 {
		return decimal.Zero
	}
	deficit := decimal.NewFromFloat(s.FuelLevel).Sub(decimal.NewFromFloat(*s.ReturnFuelLevel))
	if !deficit.IsPositive() {
		return decimal.Zero
	}
	gallons := deficit.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromFloat(fs.TankCapacityGallons))
	return gallons.Mul(decimal.NewFromFloat(fs.RefuelPricePerGallon))
}

func CleaningFee(s *domain.RentalSession, fs FeeSchedule) decimal.Decimal {
	if !s.ExcessiveCleaning {
		return decimal.Zero
	}
	return decimal.NewFromFloat(fs.CleaningFee)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// floorMinutes truncates d to whole minutes toward negative infinity.
func floorMinutes(d time.Duration) int64 {
	m := int64(d / time.Minute)
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return m
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
