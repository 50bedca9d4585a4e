package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
	mock_repo "prism-ai/backend/internal/repository/mocks"
	"prism-ai/backend/internal/service"
)

func TestPreferencesService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - row id and timestamp are forced", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		svc := service.NewPreferencesService(repo)

		repo.On("SavePreferences", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				prefs := args.Get(1).(*model.UserPreferences)
				assert.Equal(t, repository.PreferencesRowID, prefs.ID)
				assert.False(t, prefs.UpdatedAt.IsZero())
				assert.NotNil(t, prefs.PreferredStack)
			}).
			Return(nil).Once()

		err := svc.Save(ctx, &model.UserPreferences{ID: "spoofed", Language: "Japanese"})
		require.NoError(t, err)
	})

	t.Run("Failure - nil body", func(t *testing.T) {
		svc := service.NewPreferencesService(mock_repo.NewMockRepository(t))
		err := svc.Save(ctx, nil)
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})
}

func TestPreferencesService_Get(t *testing.T) {
	ctx := context.Background()
	repo := mock_repo.NewMockRepository(t)
	svc := service.NewPreferencesService(repo)

	expected := &model.UserPreferences{ID: repository.PreferencesRowID, Language: "English"}
	repo.On("GetPreferences", ctx).Return(expected, nil).Once()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
