package domain

import "time"

// ReturnUpdate carries the return-time fields captured during the return
// inspection. Nil fields are left unchanged.
type ReturnUpdate struct {
	ReturnOdometer      *int             `json:"return_odometer,omitempty"`
	ReturnFuelLevel     *float64         `json:"return_fuel_level,omitempty"`
	ReturnTimestamp     *time.Time       `json:"return_timestamp,omitempty"`
	NewDamage           *bool            `json:"new_damage,omitempty"`
	DamageNotes         *string          `json:"damage_notes,omitempty"`
	DamageLocations     *DamageLocations `json:"damage_locations,omitempty"`
	DamageFeeAmount     *float64         `json:"damage_fee_amount,omitempty"`
	ExcessiveCleaning   *bool            `json:"excessive_cleaning,omitempty"`
	ReturnSignatureData *string          `json:"return_signature_data,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u ReturnUpdate) IsEmpty() bool {
	return u.ReturnOdometer == nil && u.ReturnFuelLevel == nil && u.ReturnTimestamp == nil &&
		u.NewDamage == nil && u.DamageNotes == nil && u.DamageLocations == nil &&
		u.DamageFeeAmount == nil && u.ExcessiveCleaning == nil && u.ReturnSignatureData == nil
}

// ApplyTo copies the set fields onto s.
func (u ReturnUpdate) ApplyTo(s *RentalSession) {
	if u.ReturnOdometer != nil {
		v := *u.ReturnOdometer
		s.ReturnOdometer = &v
	}
	if u.ReturnFuelLevel != nil {
		v := *u.ReturnFuelLevel
		s.ReturnFuelLevel = &v
	}
	if u.ReturnTimestamp != nil {
		v := *u.ReturnTimestamp
		s.ReturnTimestamp = &v
	}
	if u.NewDamage != nil {
		s.NewDamage = *u.NewDamage
	}
	if u.DamageNotes != nil {
		s.DamageNotes = *u.DamageNotes
	}
	if u.DamageLocations != nil {
		s.DamageLocations = append(DamageLocations{}, (*u.DamageLocations)...)
	}
	if u.DamageFeeAmount != nil {
		s.DamageFeeAmount = *u.DamageFeeAmount
	}
	if u.ExcessiveCleaning != nil {
		s.ExcessiveCleaning = *u.ExcessiveCleaning
	}
	if u.ReturnSignatureData != nil {
		s.ReturnSignatureData = *u.ReturnSignatureData
	}
}
