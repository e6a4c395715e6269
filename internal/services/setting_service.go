package services

import (
	"sync"

	"atelier/internal/constants"
	"atelier/internal/repository"

	log "github.com/sirupsen/logrus"
)

type SettingService struct {
	repo         *repository.SettingRepository
	settings     map[string]string
	settingsLock sync.RWMutex
}

func NewSettingService(repo *repository.SettingRepository) *SettingService {
	s := &SettingService{
		repo:     repo,
		settings: make(map[string]string),
	}
	s.seedDefaults()
	s.loadSettings()
	return s
}

// seedDefaults writes any missing default settings; existing values are
// never overwritten.
func (s *SettingService) seedDefaults() {
	defaults := map[string]string{
		constants.SettingPassword:        "admin",
		constants.SettingSiteTitle:       "Atelier",
		constants.SettingSiteDescription: "Portfolio and workshop notes",
	}
	existing, err := s.repo.GetAllSettings()
	if err != nil {
		log.WithError(err).Warn("failed to read settings for seeding")
		return
	}
	for key, value := range defaults {
		if _, ok := existing[key]; ok {
			continue
		}
		if err := s.repo.UpdateSetting(key, value); err != nil {
			log.WithError(err).WithField("key", key).Warn("failed to seed setting")
		}
	}
}

func (s *SettingService) loadSettings() {
	s.settingsLock.Lock()
	defer s.settingsLock.Unlock()

	settings, err := s.repo.GetAllSettings()
	if err != nil {
		log.WithError(err).Warn("failed to load settings")
		return
	}
	s.settings = settings
}

// GetAllSettings retrieves all settings as a map from the cache.
func (s *SettingService) GetAllSettings() (map[string]string, error) {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()

	settingsCopy := make(map[string]string, len(s.settings))
	for key, value := range s.settings {
		settingsCopy[key] = value
	}
	return settingsCopy, nil
}

// UpdateSettings updates multiple settings at once and refreshes the cache.
func (s *SettingService) UpdateSettings(settings map[string]string) error {
	for key, value := range settings {
		if err := s.repo.UpdateSetting(key, value); err != nil {
			return err
		}
	}
	s.loadSettings()
	return nil
}

// GetSetting retrieves a single setting value by its key from the cache.
func (s *SettingService) GetSetting(key string) (string, error) {
	s.settingsLock.RLock()
	defer s.settingsLock.RUnlock()
	return s.settings[key], nil
}
