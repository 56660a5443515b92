package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Policy defaults applied to a new session and whenever a rate field is absent.
const (
	DefaultAllowedMileage       = 200
	DefaultRatePerMile          = 0.25
	DefaultRefuelPricePerGallon = 5.00
	DefaultTankCapacityGallons  = 15
	DefaultHourlyLateFee        = 25.00
	DefaultDailyLateFee         = 150.00
	DefaultCleaningFee          = 75.00
	DefaultFuelLevel            = 100
)

// DateLayout is the calendar-date format used by pickup_date and return_date.
const DateLayout = "2006-01-02"

type DamageLocation struct {
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Label string  `json:"label" bson:"label"`
}

// DamageLocations is stored as a JSONB column.
type DamageLocations []DamageLocation

func (d DamageLocations) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *DamageLocations) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = DamageLocations{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported damage_locations type %T", src)
	}
	return json.Unmarshal(data, d)
}

// RentalSession is one rental from intake through return and close.
// Pointer fields are optional inputs that may still be unset while the
// clerk fills the form.
type RentalSession struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty"`
	SessionStatus SessionStatus `json:"session_status" bson:"session_status"`

	CustomerName    string `json:"customer_name" bson:"customer_name"`
	CustomerPhone   string `json:"customer_phone" bson:"customer_phone"`
	CustomerEmail   string `json:"customer_email" bson:"customer_email"`
	CustomerAddress string `json:"customer_address" bson:"customer_address"`

	PassportURL string `json:"passport_url,omitempty" bson:"passport_url,omitempty"`
	LicenseURL  string `json:"license_url,omitempty" bson:"license_url,omitempty"`

	VehiclePlate string `json:"vehicle_plate" bson:"vehicle_plate"`
	VehicleType  string `json:"vehicle_type" bson:"vehicle_type"`
	PhotoFront   string `json:"photo_front,omitempty" bson:"photo_front,omitempty"`
	PhotoRear    string `json:"photo_rear,omitempty" bson:"photo_rear,omitempty"`
	PhotoLeft    string `json:"photo_left,omitempty" bson:"photo_left,omitempty"`
	PhotoRight   string `json:"photo_right,omitempty" bson:"photo_right,omitempty"`

	Odometer      int     `json:"odometer" bson:"odometer"`
	FuelLevel     float64 `json:"fuel_level" bson:"fuel_level"`
	PickupDate    string  `json:"pickup_date" bson:"pickup_date"`
	ReturnDate    string  `json:"return_date" bson:"return_date"`
	DailyRate     float64 `json:"daily_rate" bson:"daily_rate"`
	Deposit       float64 `json:"deposit" bson:"deposit"`
	TotalAmount   float64 `json:"total_amount" bson:"total_amount"`
	SignatureData string  `json:"signature_data,omitempty" bson:"signature_data,omitempty"`

	ReturnOdometer      *int            `json:"return_odometer,omitempty" bson:"return_odometer,omitempty"`
	ReturnFuelLevel     *float64        `json:"return_fuel_level,omitempty" bson:"return_fuel_level,omitempty"`
	ReturnTimestamp     *time.Time      `json:"return_timestamp,omitempty" bson:"return_timestamp,omitempty"`
	NewDamage           bool            `json:"new_damage" bson:"new_damage"`
	DamageNotes         string          `json:"damage_notes,omitempty" bson:"damage_notes,omitempty"`
	DamageLocations     DamageLocations `json:"damage_locations" bson:"damage_locations"`
	ExcessiveCleaning   bool            `json:"excessive_cleaning" bson:"excessive_cleaning"`
	ReturnPhotos        []string        `json:"return_photos" bson:"return_photos"`
	ReturnSignatureData string          `json:"return_signature_data,omitempty" bson:"return_signature_data,omitempty"`

	AllowedMileage       *int     `json:"allowed_mileage,omitempty" bson:"allowed_mileage,omitempty"`
	RatePerMile          *float64 `json:"rate_per_mile,omitempty" bson:"rate_per_mile,omitempty"`
	RefuelPricePerGallon *float64 `json:"refuel_price_per_gallon,omitempty" bson:"refuel_price_per_gallon,omitempty"`
	TankCapacityGallons  *float64 `json:"tank_capacity_gallons,omitempty" bson:"tank_capacity_gallons,omitempty"`
	HourlyLateFee        *float64 `json:"hourly_late_fee,omitempty" bson:"hourly_late_fee,omitempty"`
	DailyLateFee         *float64 `json:"daily_late_fee,omitempty" bson:"daily_late_fee,omitempty"`
	CleaningFee          *float64 `json:"cleaning_fee,omitempty" bson:"cleaning_fee,omitempty"`

	// Clerk-entered estimate, not derived.
	DamageFeeAmount float64 `json:"damage_fee_amount" bson:"damage_fee_amount"`

	// Derived by reconciliation; never edited by hand.
	LateFeeAmount       float64 `json:"late_fee_amount" bson:"late_fee_amount"`
	MileageFeeAmount    float64 `json:"mileage_fee_amount" bson:"mileage_fee_amount"`
	FuelFeeAmount       float64 `json:"fuel_fee_amount" bson:"fuel_fee_amount"`
	CleaningFeeAmount   float64 `json:"cleaning_fee_amount" bson:"cleaning_fee_amount"`
	SubtotalFees        float64 `json:"subtotal_fees" bson:"subtotal_fees"`
	FinalTotal          float64 `json:"final_total" bson:"final_total"`
	DepositRefundAmount float64 `json:"deposit_refund_amount" bson:"deposit_refund_amount"`

	CreatedAt *time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// NewRentalSession returns the blank record a clerk starts a rental with:
// status pickup, due back the day after now, full tank, default rate schedule.
func NewRentalSession(now time.Time) *RentalSession {
	allowed := DefaultAllowedMileage
	return &RentalSession{
		SessionStatus:        SessionStatusPickup,
		FuelLevel:            DefaultFuelLevel,
		PickupDate:           now.Format(DateLayout),
		ReturnDate:           now.AddDate(0, 0, 1).Format(DateLayout),
		AllowedMileage:       &allowed,
		RatePerMile:          float64Ptr(DefaultRatePerMile),
		RefuelPricePerGallon: float64Ptr(DefaultRefuelPricePerGallon),
		TankCapacityGallons:  float64Ptr(DefaultTankCapacityGallons),
		HourlyLateFee:        float64Ptr(DefaultHourlyLateFee),
		DailyLateFee:         float64Ptr(DefaultDailyLateFee),
		CleaningFee:          float64Ptr(DefaultCleaningFee),
		DamageLocations:      DamageLocations{},
		ReturnPhotos:         []string{},
	}
}

// IsClosed reports whether the session has reached its terminal status.
func (s *RentalSession) IsClosed() bool {
	return s.SessionStatus == SessionStatusClosed
}

// ReturnComplete reports whether every field required to close the rental
// has been captured.
func (s *RentalSession) ReturnComplete() bool {
	return s.ID != "" &&
		s.ReturnOdometer != nil && *s.ReturnOdometer != 0 &&
		s.ReturnFuelLevel != nil &&
		s.ReturnTimestamp != nil &&
		s.ReturnSignatureData != ""
}

// ContractID is the short reference printed on the contract.
func (s *RentalSession) ContractID() string {
	if len(s.ID) < 8 {
		return "DRAFT"
	}
	return strings.ToUpper(s.ID[:8])
}

func float64Ptr(v float64) *float64 {
	return &v
}
