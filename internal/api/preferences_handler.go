package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/interfaces"
	"prism-ai/backend/internal/model"
)

// PreferencesHandler serves the long-term memory surface.
type PreferencesHandler struct {
	service interfaces.PreferencesService
}

func NewPreferencesHandler(svc interfaces.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{service: svc}
}

// UpdatePreferencesRequest is the body of PUT /preferences.
type UpdatePreferencesRequest struct {
	Language           string   `json:"language" validate:"max=50"`
	CodingStyle        string   `json:"coding_style" validate:"max=2000"`
	PreferredStack     []string `json:"preferred_stack" validate:"max=50,dive,max=100"`
	CustomInstructions string   `json:"custom_instructions" validate:"max=10000"`
}

//	@Summary  Get user preferences
//	@Tags     preferences
//	@Produce  json
//	@Success  200 {object} model.UserPreferences
//	@Router   /preferences [get]
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

//	@Summary  Update user preferences
//	@Tags     preferences
//	@Accept   json
//	@Produce  json
//	@Param    request body UpdatePreferencesRequest true "Preferences"
//	@Success  200 {object} StatusResponse
//	@Failure  400 {object} ErrorResponse
//	@Router   /preferences [put]
func (h *PreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: %v", app_errors.ErrBadRequest, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	prefs := &model.UserPreferences{
		Language:           req.Language,
		CodingStyle:        req.CodingStyle,
		PreferredStack:     req.PreferredStack,
		CustomInstructions: req.CustomInstructions,
	}
	if err := h.service.Save(r.Context(), prefs); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
