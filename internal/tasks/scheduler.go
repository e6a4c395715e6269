package tasks

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"

	"atelier/internal/constants"
	"atelier/internal/services"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler drives the periodic backup jobs from the interval settings.
type Scheduler struct {
	cron           *cron.Cron
	settingService *services.SettingService
	backupService  *services.BackupService
	mu             sync.Mutex
}

func NewScheduler(settingService *services.SettingService, backupService *services.BackupService) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		settingService: settingService,
		backupService:  backupService,
	}
}

func (s *Scheduler) Start() {
	log.Info("backup scheduler initializing")
	s.ReloadTasks()
}

// ReloadTasks rebuilds the cron entries from current settings. Called at
// startup and whenever backup settings change.
func (s *Scheduler) ReloadTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = cron.New()

	settings, err := s.settingService.GetAllSettings()
	if err != nil {
		log.WithError(err).Warn("cannot load settings for scheduler reload")
		return
	}

	s.addBackupTask(settings, constants.SettingGithubInterval, "GitHub", func() error {
		repo := settings[constants.SettingGithubRepo]
		branch := settings[constants.SettingGithubBranch]
		token := settings[constants.SettingGithubToken]
		if repo == "" || branch == "" || token == "" {
			return errors.New("GitHub backup settings are incomplete")
		}
		return s.backupService.BackupToGithub(repo, branch, token)
	})

	s.addBackupTask(settings, constants.SettingWebdavInterval, "WebDAV", func() error {
		url := settings[constants.SettingWebdavURL]
		user := settings[constants.SettingWebdavUser]
		password := settings[constants.SettingWebdavPassword]
		if url == "" {
			return errors.New("WebDAV URL is not configured")
		}
		return s.backupService.BackupToWebdav(url, user, password)
	})

	if len(s.cron.Entries()) > 0 {
		s.cron.Start()
		log.Info("scheduled backup tasks reloaded and started")
	} else {
		log.Info("no scheduled backup tasks active")
	}
}

func (s *Scheduler) addBackupTask(settings map[string]string, intervalKey, taskName string, backupFunc func() error) {
	intervalStr := settings[intervalKey]
	if intervalStr == "" {
		return
	}

	interval, err := strconv.Atoi(intervalStr)
	if err != nil || interval <= 0 {
		return
	}

	spec := fmt.Sprintf("@every %dh", interval)
	job := func() {
		log.Infof("running scheduled %s backup", taskName)
		if err := backupFunc(); err != nil {
			if errors.Is(err, services.ErrBackupNoChange) {
				log.Infof("%s backup skipped, no data changes", taskName)
			} else {
				log.WithError(err).Errorf("scheduled %s backup failed", taskName)
			}
			return
		}
		log.Infof("scheduled %s backup succeeded", taskName)
	}

	if _, err := s.cron.AddFunc(spec, recoveryWrapper(job)); err != nil {
		log.WithError(err).Errorf("failed to schedule %s backup", taskName)
		return
	}
	log.Infof("scheduled %s backup every %d hours", taskName, interval)
}

func recoveryWrapper(job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("scheduled task panicked: %v\n%s", r, debug.Stack())
			}
		}()
		job()
	}
}
