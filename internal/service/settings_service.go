package service

import (
	"context"

	"github.com/AnselmJeong/Flow-v4/internal/config"
	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
)

// SettingsService handles user settings
type SettingsService struct {
	cfg          *config.Config
	settingsRepo *repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(cfg *config.Config, settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		cfg:          cfg,
		settingsRepo: settingsRepo,
	}
}

// Get returns the current settings with defaults filled in for unset values
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	apiKey, err := s.settingsRepo.Get(ctx, domain.SettingAPIKey)
	if err != nil {
		return nil, err
	}
	model, err := s.settingsRepo.Get(ctx, domain.SettingModel)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = s.cfg.LLM.Model
	}
	theme, err := s.settingsRepo.Get(ctx, domain.SettingTheme)
	if err != nil {
		return nil, err
	}
	if theme == "" {
		theme = domain.ThemeLight
	}

	return &domain.Settings{
		APIKey: apiKey,
		Model:  model,
		Theme:  theme,
	}, nil
}

// Save replaces all settings with the given values. Saved credentials take
// effect on the next model call; nothing is cached.
func (s *SettingsService) Save(ctx context.Context, req *domain.SaveSettingsRequest) (*domain.Settings, error) {
	if req.Theme != "" && req.Theme != domain.ThemeLight && req.Theme != domain.ThemeDark && req.Theme != domain.ThemeSepia {
		return nil, domain.ErrUnknownTheme
	}

	if err := s.settingsRepo.Set(ctx, domain.SettingAPIKey, req.APIKey); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Set(ctx, domain.SettingModel, req.Model); err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Set(ctx, domain.SettingTheme, req.Theme); err != nil {
		return nil, err
	}

	return s.Get(ctx)
}
