package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rental-desk-backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// dueIn returns the due instant of 2024-01-10 in UTC shifted by d.
func dueIn(d time.Duration) *time.Time {
	return timePtr(time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC).Add(d))
}

func baseSession() *domain.RentalSession {
	s := domain.NewRentalSession(time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC))
	s.ReturnDate = "2024-01-10"
	s.Odometer = 1000
	s.FuelLevel = 100
	s.TotalAmount = 150
	s.Deposit = 200
	return s
}

func TestReconcile_LateFee(t *testing.T) {
	tests := []struct {
		name     string
		returned *time.Time
		expected float64
	}{
		{"Returned early", dueIn(-3 * time.Hour), 0},
		{"Exactly at due instant", dueIn(0), 0},
		{"Inside grace window", dueIn(29*time.Minute + 59*time.Second), 0},
		{"Thirty minutes late bills one hour", dueIn(30 * time.Minute), 25},
		{"One hour one minute bills two hours", dueIn(61 * time.Minute), 50},
		{"Twenty three hours late", dueIn(23 * time.Hour), 575},
		{"Crossing 24 billed hours switches to daily", dueIn(23*time.Hour + time.Minute), 150},
		{"Exactly one day", dueIn(24 * time.Hour), 150},
		{"Thirty hours bills two days", dueIn(30 * time.Hour), 300},
		{"Three days and change", dueIn(72*time.Hour + 5*time.Minute), 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSession()
			s.ReturnTimestamp = tt.returned
			r := Reconcile(s, time.UTC)
			assert.Equal(t, tt.expected, r.LateFeeAmount)
		})
	}

	t.Run("Daily rate never mixed with hourly past threshold", func(t *testing.T) {
		for h := 24; h <= 96; h++ {
			s := baseSession()
			s.ReturnTimestamp = dueIn(time.Duration(h) * time.Hour)
			r := Reconcile(s, time.UTC)
			days := (h + 23) / 24
			assert.Equal(t, float64(days)*150, r.LateFeeAmount, "hours late: %d", h)
		}
	})

	t.Run("Missing return timestamp", func(t *testing.T) {
		s := baseSession()
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).LateFeeAmount)
	})

	t.Run("Missing return date", func(t *testing.T) {
		s := baseSession()
		s.ReturnDate = ""
		s.ReturnTimestamp = dueIn(48 * time.Hour)
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).LateFeeAmount)
	})

	t.Run("Custom late rates", func(t *testing.T) {
		s := baseSession()
		s.HourlyLateFee = floatPtr(10)
		s.DailyLateFee = floatPtr(90)
		s.ReturnTimestamp = dueIn(2 * time.Hour)
		assert.Equal(t, 20.0, Reconcile(s, time.UTC).LateFeeAmount)
		s.ReturnTimestamp = dueIn(25 * time.Hour)
		assert.Equal(t, 180.0, Reconcile(s, time.UTC).LateFeeAmount)
	})

	t.Run("Due instant follows business location", func(t *testing.T) {
		est := time.FixedZone("EST", -5*3600)
		s := baseSession()
		// 23:00 on the due date in EST, four hours past midnight UTC.
		s.ReturnTimestamp = timePtr(time.Date(2024, 1, 11, 4, 0, 0, 0, time.UTC))
		assert.Equal(t, 0.0, Reconcile(s, est).LateFeeAmount)
		assert.Equal(t, 100.0, Reconcile(s, time.UTC).LateFeeAmount)
	})
}

func TestReconcile_MileageFee(t *testing.T) {
	t.Run("Overage billed per mile", func(t *testing.T) {
		s := baseSession()
		s.ReturnOdometer = intPtr(1300)
		assert.Equal(t, 25.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("Within allowance", func(t *testing.T) {
		s := baseSession()
		s.ReturnOdometer = intPtr(1200)
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("Custom rate", func(t *testing.T) {
		s := baseSession()
		s.ReturnOdometer = intPtr(1251)
		s.RatePerMile = floatPtr(0.4)
		assert.Equal(t, 20.4, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("No allowance means no mileage fee", func(t *testing.T) {
		s := baseSession()
		s.AllowedMileage = nil
		s.ReturnOdometer = intPtr(5000)
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("Unknown pickup odometer", func(t *testing.T) {
		s := baseSession()
		s.Odometer = 0
		s.ReturnOdometer = intPtr(5000)
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("Return odometer not yet entered", func(t *testing.T) {
		s := baseSession()
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})
}

func TestReconcile_FuelFee(t *testing.T) {
	t.Run("Half tank short", func(t *testing.T) {
		s := baseSession()
		s.ReturnFuelLevel = floatPtr(50)
		assert.Equal(t, 37.5, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("Empty tank still counts", func(t *testing.T) {
		s := baseSession()
		s.ReturnFuelLevel = floatPtr(0)
		assert.Equal(t, 75.0, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("Returned with more fuel", func(t *testing.T) {
		s := baseSession()
		s.FuelLevel = 50
		s.ReturnFuelLevel = floatPtr(80)
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("Rounded to cents", func(t *testing.T) {
		s := baseSession()
		s.ReturnFuelLevel = floatPtr(66.7)
		// 33.3% of 15 gal = 4.995 gal at $5.00
		assert.Equal(t, 24.98, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("Custom tank and price", func(t *testing.T) {
		s := baseSession()
		s.TankCapacityGallons = floatPtr(20)
		s.RefuelPricePerGallon = floatPtr(4.5)
		s.ReturnFuelLevel = floatPtr(75)
		assert.Equal(t, 22.5, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("Return fuel not yet entered", func(t *testing.T) {
		s := baseSession()
		assert.Equal(t, 0.0, Reconcile(s, time.UTC).FuelFeeAmount)
	})
}

func TestReconcile_CleaningAndDamage(t *testing.T) {
	s := baseSession()
	s.ExcessiveCleaning = true
	s.DamageFeeAmount = 120.456
	r := Reconcile(s, time.UTC)
	assert.Equal(t, 75.0, r.CleaningFeeAmount)
	assert.Equal(t, 195.46, r.SubtotalFees)

	s.CleaningFee = floatPtr(40)
	assert.Equal(t, 40.0, Reconcile(s, time.UTC).CleaningFeeAmount)

	s.ExcessiveCleaning = false
	assert.Equal(t, 0.0, Reconcile(s, time.UTC).CleaningFeeAmount)
}

func TestReconcile_DefaultsWhenPolicyAbsent(t *testing.T) {
	allowed := 200
	s := &domain.RentalSession{
		ReturnDate:        "2024-01-10",
		Odometer:          1000,
		FuelLevel:         100,
		AllowedMileage:    &allowed,
		RatePerMile:       floatPtr(0),
		ReturnOdometer:    intPtr(1300),
		ReturnFuelLevel:   floatPtr(50),
		ReturnTimestamp:   dueIn(2 * time.Hour),
		ExcessiveCleaning: true,
	}
	r := Reconcile(s, time.UTC)
	assert.Equal(t, 50.0, r.LateFeeAmount)
	assert.Equal(t, 25.0, r.MileageFeeAmount)
	assert.Equal(t, 37.5, r.FuelFeeAmount)
	assert.Equal(t, 75.0, r.CleaningFeeAmount)
	assert.Equal(t, 187.5, r.SubtotalFees)
}

func TestReconcile_Scenarios(t *testing.T) {
	t.Run("A: mileage overage", func(t *testing.T) {
		s := &domain.RentalSession{
			PickupDate:     "2024-01-09",
			ReturnDate:     "2024-01-10",
			Odometer:       1000,
			ReturnOdometer: intPtr(1300),
			AllowedMileage: intPtr(200),
			RatePerMile:    floatPtr(0.25),
		}
		assert.Equal(t, 25.0, Reconcile(s, time.UTC).MileageFeeAmount)
	})

	t.Run("B: fuel deficit", func(t *testing.T) {
		s := &domain.RentalSession{
			FuelLevel:            100,
			ReturnFuelLevel:      floatPtr(50),
			TankCapacityGallons:  floatPtr(15),
			RefuelPricePerGallon: floatPtr(5),
		}
		assert.Equal(t, 37.5, Reconcile(s, time.UTC).FuelFeeAmount)
	})

	t.Run("C: eight hours late", func(t *testing.T) {
		s := &domain.RentalSession{
			ReturnDate:      "2024-01-10",
			ReturnTimestamp: timePtr(time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)),
		}
		assert.Equal(t, 200.0, Reconcile(s, time.UTC).LateFeeAmount)
	})

	t.Run("D: clean on-time return", func(t *testing.T) {
		s := baseSession()
		s.ReturnOdometer = intPtr(s.Odometer)
		s.ReturnFuelLevel = floatPtr(s.FuelLevel)
		s.ReturnTimestamp = dueIn(-time.Hour)
		r := Reconcile(s, time.UTC)
		assert.Equal(t, Reconciliation{
			FinalTotal:          150,
			DepositRefundAmount: 200,
		}, r)
	})

	t.Run("E: refund clamped at zero", func(t *testing.T) {
		s := baseSession()
		s.DamageFeeAmount = 250
		r := Reconcile(s, time.UTC)
		assert.Equal(t, 250.0, r.SubtotalFees)
		assert.Equal(t, 0.0, r.DepositRefundAmount)
		assert.Equal(t, 400.0, r.FinalTotal)
	})
}

func TestReconcile_AggregateInvariants(t *testing.T) {
	sessions := []*domain.RentalSession{
		baseSession(),
		func() *domain.RentalSession {
			s := baseSession()
			s.ReturnOdometer = intPtr(1333)
			s.ReturnFuelLevel = floatPtr(12.3)
			s.ReturnTimestamp = dueIn(5*time.Hour + 7*time.Minute)
			s.DamageFeeAmount = 19.99
			s.ExcessiveCleaning = true
			return s
		}(),
		func() *domain.RentalSession {
			s := baseSession()
			s.Deposit = 0
			s.TotalAmount = 99.99
			s.ReturnOdometer = intPtr(1201)
			s.ReturnFuelLevel = floatPtr(99.9)
			s.ReturnTimestamp = dueIn(49 * time.Hour)
			return s
		}(),
		func() *domain.RentalSession {
			s := baseSession()
			s.Deposit = 1000
			s.ReturnFuelLevel = floatPtr(33.3)
			s.RatePerMile = floatPtr(0.333)
			s.ReturnOdometer = intPtr(1777)
			return s
		}(),
	}

	for i, s := range sessions {
		r := Reconcile(s, time.UTC)

		sum := decimal.NewFromFloat(r.LateFeeAmount).
			Add(decimal.NewFromFloat(r.MileageFeeAmount)).
			Add(decimal.NewFromFloat(r.FuelFeeAmount)).
			Add(decimal.NewFromFloat(s.DamageFeeAmount).Round(2)).
			Add(decimal.NewFromFloat(r.CleaningFeeAmount))
		subtotal := decimal.NewFromFloat(r.SubtotalFees)
		assert.True(t, sum.Equal(subtotal), "session %d: subtotal %s != sum %s", i, subtotal, sum)

		final := decimal.NewFromFloat(s.TotalAmount).Add(subtotal).Round(2)
		assert.True(t, final.Equal(decimal.NewFromFloat(r.FinalTotal)), "session %d: final total", i)

		refund := decimal.Max(decimal.Zero, decimal.NewFromFloat(s.Deposit).Sub(subtotal)).Round(2)
		assert.True(t, refund.Equal(decimal.NewFromFloat(r.DepositRefundAmount)), "session %d: refund", i)
		assert.GreaterOrEqual(t, r.DepositRefundAmount, 0.0)

		if r.SubtotalFees == 0 {
			assert.Equal(t, s.Deposit, r.DepositRefundAmount)
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	s := baseSession()
	s.ReturnOdometer = intPtr(1410)
	s.ReturnFuelLevel = floatPtr(41.7)
	s.ReturnTimestamp = dueIn(3*time.Hour + 11*time.Minute)
	s.DamageFeeAmount = 80

	first := Reconcile(s, time.UTC)
	first.ApplyTo(s)
	second := Reconcile(s, time.UTC)
	assert.Equal(t, first, second)
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	s := baseSession()
	s.ReturnOdometer = intPtr(1500)
	before := *s
	_ = Reconcile(s, time.UTC)
	assert.Equal(t, before, *s)
}

func TestReconcile_NilAndEmpty(t *testing.T) {
	assert.Equal(t, Reconciliation{}, Reconcile(nil, time.UTC))
	assert.Equal(t, Reconciliation{}, Reconcile(&domain.RentalSession{}, nil))
}

func TestReconciliation_ApplyTo(t *testing.T) {
	s := baseSession()
	s.DamageFeeAmount = 10
	r := Reconciliation{
		LateFeeAmount:       1,
		MileageFeeAmount:    2,
		FuelFeeAmount:       3,
		CleaningFeeAmount:   4,
		SubtotalFees:        20,
		FinalTotal:          170,
		DepositRefundAmount: 180,
	}
	r.ApplyTo(s)
	assert.Equal(t, 1.0, s.LateFeeAmount)
	assert.Equal(t, 2.0, s.MileageFeeAmount)
	assert.Equal(t, 3.0, s.FuelFeeAmount)
	assert.Equal(t, 4.0, s.CleaningFeeAmount)
	assert.Equal(t, 20.0, s.SubtotalFees)
	assert.Equal(t, 170.0, s.FinalTotal)
	assert.Equal(t, 180.0, s.DepositRefundAmount)
	assert.Equal(t, 10.0, s.DamageFeeAmount)
}
