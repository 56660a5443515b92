package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/service"
	"rental-desk-backend/internal/utils"
)

type SessionHandler struct {
	sessions service.SessionService
	photos   service.PhotoService
	loc      *time.Location
}

func NewSessionHandler(sessions service.SessionService, photos service.PhotoService, loc *time.Location) *SessionHandler {
	return &SessionHandler{sessions: sessions, photos: photos, loc: loc}
}

type sessionListResponse struct {
	Sessions []domain.RentalSession `json:"sessions"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// returnRequest accepts a zone-less return timestamp, read in the business
// timezone, as entered on the desk form.
type returnRequest struct {
	ReturnOdometer      *int                    `json:"return_odometer"`
	ReturnFuelLevel     *float64                `json:"return_fuel_level"`
	ReturnTimestamp     *string                 `json:"return_timestamp"`
	NewDamage           *bool                   `json:"new_damage"`
	DamageNotes         *string                 `json:"damage_notes"`
	DamageLocations     *domain.DamageLocations `json:"damage_locations"`
	DamageFeeAmount     *float64                `json:"damage_fee_amount"`
	ExcessiveCleaning   *bool                   `json:"excessive_cleaning"`
	ReturnSignatureData *string                 `json:"return_signature_data"`
}

func (req returnRequest) update(loc *time.Location) (domain.ReturnUpdate, error) {
	u := domain.ReturnUpdate{
		ReturnOdometer:      req.ReturnOdometer,
		ReturnFuelLevel:     req.ReturnFuelLevel,
		NewDamage:           req.NewDamage,
		DamageNotes:         req.DamageNotes,
		DamageLocations:     req.DamageLocations,
		DamageFeeAmount:     req.DamageFeeAmount,
		ExcessiveCleaning:   req.ExcessiveCleaning,
		ReturnSignatureData: req.ReturnSignatureData,
	}
	if req.ReturnTimestamp != nil {
		ts, err := utils.ParseTimestamp(*req.ReturnTimestamp, loc)
		if err != nil {
			return u, fmt.Errorf("%w: return_timestamp: %v", service.ErrInvalidInput, err)
		}
		u.ReturnTimestamp = &ts
	}
	return u, nil
}

// decodeSession reads a session form body. return_timestamp may be any
// ISO-8601 date-time; a zone-less value is read in loc and an empty one
// leaves the field unset.
func decodeSession(r *http.Request, loc *time.Location) (*domain.RentalSession, error) {
	var fields map[string]json.RawMessage
	if err := decodeJSON(r, &fields); err != nil {
		return nil, err
	}

	if raw, ok := fields["return_timestamp"]; ok {
		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%w: return_timestamp must be a string", service.ErrInvalidInput)
		}
		if value == nil || strings.TrimSpace(*value) == "" {
			delete(fields, "return_timestamp")
		} else {
			ts, err := utils.ParseTimestamp(*value, loc)
			if err != nil {
				return nil, fmt.Errorf("%w: return_timestamp: %v", service.ErrInvalidInput, err)
			}
			encoded, err := json.Marshal(ts)
			if err != nil {
				return nil, err
			}
			fields["return_timestamp"] = encoded
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var s domain.RentalSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: malformed session: %v", service.ErrInvalidInput, err)
	}
	return &s, nil
}

type photoURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *SessionHandler) New(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.NewSession())
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := decodeSession(r, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.ID = ""
	saved, err := h.sessions.Save(r.Context(), s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var sessions []domain.RentalSession
	switch state := r.URL.Query().Get("state"); state {
	case "", "open":
		sessions, err = h.sessions.ListOpen(r.Context(), limit)
	case "closed":
		sessions, err = h.sessions.ListClosed(r.Context(), limit)
	default:
		err = fmt.Errorf("%w: state must be open or closed", service.ErrInvalidInput)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: nonNil(sessions)})
}

func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	by := q.Get("by")
	if by == "" {
		by = string(domain.SearchByPlate)
	}
	sessions, err := h.sessions.Search(r.Context(), domain.SearchField(by), q.Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: nonNil(sessions)})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, err := decodeSession(r, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.ID = mux.Vars(r)["id"]
	saved, err := h.sessions.Save(r.Context(), s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) UpdateReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	update, err := req.update(h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.sessions.UpdateReturn(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to, err := domain.ParseSessionStatus(strings.TrimSpace(req.Status))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	s, err := h.sessions.AdvanceStatus(r.Context(), mux.Vars(r)["id"], to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.CloseRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UploadPhoto takes the raw image as the request body.
func (h *SessionHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := h.photos.Upload(r.Context(), vars["id"], domain.PhotoSlot(vars["slot"]), r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *SessionHandler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	url, expiresAt, err := h.photos.DownloadURL(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photoURLResponse{URL: url, ExpiresAt: expiresAt})
}

func (h *SessionHandler) CustomerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.QuickFill(r.Context(), mux.Vars(r)["phone"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Preview prices the posted form without saving it.
func (h *SessionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s, err := decodeSession(r, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Preview(s))
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", service.ErrInvalidInput)
	}
	return n, nil
}

func nonNil(s []domain.RentalSession) []domain.RentalSession {
	if s == nil {
		return []domain.RentalSession{}
	}
	return s
}
