package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/api"
	"prism-ai/backend/internal/interfaces/mocks"
	"prism-ai/backend/internal/model"
)

func setupPreferencesHandler(t *testing.T) (*api.PreferencesHandler, *mocks.MockPreferencesService) {
	mockSvc := mocks.NewMockPreferencesService(t)
	return api.NewPreferencesHandler(mockSvc), mockSvc
}

func TestPreferencesHandler_GetPreferences(t *testing.T) {
	handler, mockSvc := setupPreferencesHandler(t)

	prefs := &model.UserPreferences{ID: "local-user", Language: "Japanese"}
	mockSvc.On("Get", mock.Anything).Return(prefs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	rr := httptest.NewRecorder()
	handler.GetPreferences(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got model.UserPreferences
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Japanese", got.Language)
}

func TestPreferencesHandler_UpdatePreferences(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupPreferencesHandler(t)

		mockSvc.On("Save", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				prefs := args.Get(1).(*model.UserPreferences)
				assert.Equal(t, "Japanese", prefs.Language)
				assert.Equal(t, []string{"Go", "SQLite"}, prefs.PreferredStack)
			}).
			Return(nil).Once()

		body := `{"language":"Japanese","preferred_stack":["Go","SQLite"]}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.UpdatePreferences(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - malformed JSON", func(t *testing.T) {
		handler, _ := setupPreferencesHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader(`{`))
		rr := httptest.NewRecorder()
		handler.UpdatePreferences(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - oversized field fails validation", func(t *testing.T) {
		handler, _ := setupPreferencesHandler(t)

		body := `{"language":"` + strings.Repeat("x", 60) + `"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.UpdatePreferences(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
