package domain

// CustomerProfile is the contact data reused to pre-fill a returning
// customer's intake form.
type CustomerProfile struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type PhotoSlot string

const (
	PhotoSlotPassport PhotoSlot = "passport"
	PhotoSlotLicense  PhotoSlot = "license"
	PhotoSlotFront    PhotoSlot = "front"
	PhotoSlotRear     PhotoSlot = "rear"
	PhotoSlotLeft     PhotoSlot = "left"
	PhotoSlotRight    PhotoSlot = "right"
	PhotoSlotReturn   PhotoSlot = "return"
)

func (p PhotoSlot) Valid() bool {
	switch p {
	case PhotoSlotPassport, PhotoSlotLicense, PhotoSlotFront, PhotoSlotRear,
		PhotoSlotLeft, PhotoSlotRight, PhotoSlotReturn:
		return true
	}
	return false
}

// Attach records a stored object key in the session field backing slot.
// Return photos accumulate; every other slot holds a single image.
func (s *RentalSession) Attach(slot PhotoSlot, key string) {
	switch slot {
	case PhotoSlotPassport:
		s.PassportURL = key
	case PhotoSlotLicense:
		s.LicenseURL = key
	case PhotoSlotFront:
		s.PhotoFront = key
	case PhotoSlotRear:
		s.PhotoRear = key
	case PhotoSlotLeft:
		s.PhotoLeft = key
	case PhotoSlotRight:
		s.PhotoRight = key
	case PhotoSlotReturn:
		s.ReturnPhotos = append(s.ReturnPhotos, key)
	}
}

// SearchField selects the column a session search matches on.
type SearchField string

const (
	SearchByPlate SearchField = "plate"
	SearchByName  SearchField = "name"
	SearchByPhone SearchField = "phone"
)

func (f SearchField) Valid() bool {
	return f == SearchByPlate || f == SearchByName || f == SearchByPhone
}
