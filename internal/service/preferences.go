package service

import (
	"context"
	"errors"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"
)

// PreferencesService stores per-user preferences keyed by the caller's email.
type PreferencesService struct {
	repo repository.PreferencesRepository
}

func NewPreferencesService(repo repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

// DefaultPreferences is what a user sees before saving anything.
func DefaultPreferences(userID string) model.UserPreferences {
	return model.UserPreferences{
		UserID:         userID,
		LowStockEmails: true,
		CallUpdates:    true,
		DefaultEdition: model.EditionIcon,
		RowsPerPage:    25,
		Theme:          "system",
	}
}

// Get returns stored preferences or the defaults.
func (s *PreferencesService) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	p, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return model.UserPreferences{}, err
	}
	return *p, nil
}

// Save replaces the user's preferences.
func (s *PreferencesService) Save(ctx context.Context, userID string, p model.UserPreferences) (model.UserPreferences, error) {
	p.UserID = userID
	if p.DefaultEdition != "" {
		ed, ok := model.ParseEdition(string(p.DefaultEdition))
		if !ok {
			return model.UserPreferences{}, ErrInvalidEdition
		}
		p.DefaultEdition = ed
	}
	if p.RowsPerPage <= 0 {
		p.RowsPerPage = 25
	}
	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return model.UserPreferences{}, err
	}
	return p, nil
}
