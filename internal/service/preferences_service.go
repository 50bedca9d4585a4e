package service

import (
	"context"
	"fmt"
	"time"

	app_errors "prism-ai/backend/internal/errors"
	"prism-ai/backend/internal/model"
	"prism-ai/backend/internal/repository"
)

// PreferencesService manages the long-term memory tier: a single preferences
// row per installation, created lazily with defaults on first read.
type PreferencesService struct {
	repo repository.Repository
}

func NewPreferencesService(repo repository.Repository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

func (s *PreferencesService) Get(ctx context.Context) (*model.UserPreferences, error) {
	return s.repo.GetPreferences(ctx)
}

func (s *PreferencesService) Save(ctx context.Context, prefs *model.UserPreferences) error {
	if prefs == nil {
		return fmt.Errorf("%w: preferences body required", app_errors.ErrValidation)
	}
	// The row id is fixed: there is exactly one local user.
	prefs.ID = repository.PreferencesRowID
	prefs.UpdatedAt = time.Now().UTC()
	if prefs.PreferredStack == nil {
		prefs.PreferredStack = []string{}
	}
	return s.repo.SavePreferences(ctx, prefs)
}
