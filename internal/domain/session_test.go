package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRentalSession(t *testing.T) {
	now := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
	s := NewRentalSession(now)

	assert.Equal(t, SessionStatusPickup, s.SessionStatus)
	assert.Equal(t, "2024-01-31", s.PickupDate)
	assert.Equal(t, "2024-02-01", s.ReturnDate)
	assert.Equal(t, float64(100), s.FuelLevel)
	require.NotNil(t, s.AllowedMileage)
	assert.Equal(t, 200, *s.AllowedMileage)
	assert.Equal(t, 0.25, *s.RatePerMile)
	assert.Equal(t, 5.00, *s.RefuelPricePerGallon)
	assert.Equal(t, float64(15), *s.TankCapacityGallons)
	assert.Equal(t, 25.00, *s.HourlyLateFee)
	assert.Equal(t, 150.00, *s.DailyLateFee)
	assert.Equal(t, 75.00, *s.CleaningFee)
	assert.Empty(t, s.DamageLocations)
	assert.NotNil(t, s.ReturnPhotos)
	assert.Nil(t, s.ReturnOdometer)
	assert.Nil(t, s.ReturnFuelLevel)
}

func TestSessionStatus_Transitions(t *testing.T) {
	t.Run("Allowed forward steps", func(t *testing.T) {
		assert.True(t, SessionStatusPickup.CanTransitionTo(SessionStatusReturn))
		assert.True(t, SessionStatusReturn.CanTransitionTo(SessionStatusCompleted))
		assert.True(t, SessionStatusCompleted.CanTransitionTo(SessionStatusClosed))
	})

	t.Run("Skips and reversals rejected", func(t *testing.T) {
		assert.False(t, SessionStatusPickup.CanTransitionTo(SessionStatusClosed))
		assert.False(t, SessionStatusReturn.CanTransitionTo(SessionStatusPickup))
		assert.False(t, SessionStatusClosed.CanTransitionTo(SessionStatusPickup))
		assert.False(t, SessionStatusPickup.CanTransitionTo(SessionStatusPickup))
	})

	t.Run("Closed is terminal", func(t *testing.T) {
		_, ok := SessionStatusClosed.Next()
		assert.False(t, ok)
	})

	t.Run("Path to closed", func(t *testing.T) {
		path, ok := SessionStatusReturn.PathTo(SessionStatusClosed)
		require.True(t, ok)
		assert.Equal(t, []SessionStatus{SessionStatusCompleted, SessionStatusClosed}, path)

		_, ok = SessionStatusClosed.PathTo(SessionStatusReturn)
		assert.False(t, ok)

		path, ok = SessionStatusCompleted.PathTo(SessionStatusCompleted)
		assert.True(t, ok)
		assert.Empty(t, path)
	})
}

func TestParseSessionStatus(t *testing.T) {
	st, err := ParseSessionStatus("completed")
	assert.NoError(t, err)
	assert.Equal(t, SessionStatusCompleted, st)

	_, err = ParseSessionStatus("overdue")
	assert.Error(t, err)
}

func TestRentalSession_ReturnComplete(t *testing.T) {
	odo := 1300
	fuel := 0.0
	ts := time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
	s := &RentalSession{
		ID:                  "0f8fad5b-d9cb-469f-a165-70867728950e",
		ReturnOdometer:      &odo,
		ReturnFuelLevel:     &fuel,
		ReturnTimestamp:     &ts,
		ReturnSignatureData: "data:image/png;base64,AAAA",
	}
	assert.True(t, s.ReturnComplete(), "empty tank is still a recorded fuel level")

	s.ReturnSignatureData = ""
	assert.False(t, s.ReturnComplete())

	s.ReturnSignatureData = "sig"
	s.ID = ""
	assert.False(t, s.ReturnComplete())
}

func TestRentalSession_ContractID(t *testing.T) {
	assert.Equal(t, "DRAFT", (&RentalSession{}).ContractID())
	assert.Equal(t, "0F8FAD5B", (&RentalSession{ID: "0f8fad5b-d9cb-469f"}).ContractID())
}

func TestRentalSession_Attach(t *testing.T) {
	s := NewRentalSession(time.Now())
	s.Attach(PhotoSlotFront, "sessions/1/front.jpg")
	s.Attach(PhotoSlotPassport, "sessions/1/passport.jpg")
	s.Attach(PhotoSlotReturn, "sessions/1/return_a.jpg")
	s.Attach(PhotoSlotReturn, "sessions/1/return_b.jpg")

	assert.Equal(t, "sessions/1/front.jpg", s.PhotoFront)
	assert.Equal(t, "sessions/1/passport.jpg", s.PassportURL)
	assert.Equal(t, []string{"sessions/1/return_a.jpg", "sessions/1/return_b.jpg"}, s.ReturnPhotos)
	assert.False(t, PhotoSlot("roof").Valid())
}

func TestDamageLocations_ValueScan(t *testing.T) {
	locs := DamageLocations{{X: 12.5, Y: 40, Label: "Front bumper"}}
	v, err := locs.Value()
	require.NoError(t, err)

	var out DamageLocations
	require.NoError(t, out.Scan(v))
	assert.Equal(t, locs, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)

	assert.Error(t, out.Scan(42))
}
