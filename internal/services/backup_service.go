package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"atelier/internal/constants"
	"atelier/internal/models"

	"github.com/google/go-github/v39/github"
	"github.com/yeka/zip"
	"golang.org/x/oauth2"
)

var ErrBackupNoChange = errors.New("no data changes since last backup")

// BackupService exports every content bundle, markdown page and setting into
// an encrypted zip and ships it to GitHub or a WebDAV server.
type BackupService struct {
	ContentService *ContentService
	PageService    *PageService
	SettingService *SettingService
}

func NewBackupService(contentService *ContentService, pageService *PageService, settingService *SettingService) *BackupService {
	return &BackupService{
		ContentService: contentService,
		PageService:    pageService,
		SettingService: settingService,
	}
}

func (s *BackupService) generateBackupDataAndHash() (*models.SiteBackup, string, error) {
	contents, err := s.ContentService.ExportAll()
	if err != nil {
		return nil, "", fmt.Errorf("export contents: %w", err)
	}

	pages, err := s.PageService.ListPages("")
	if err != nil {
		return nil, "", fmt.Errorf("export markdown pages: %w", err)
	}

	settings, err := s.SettingService.GetAllSettings()
	if err != nil {
		return nil, "", fmt.Errorf("export settings: %w", err)
	}

	// The change-detection hashes themselves must not feed the hash.
	delete(settings, constants.SettingGithubLastBackupHash)
	delete(settings, constants.SettingWebdavLastBackupHash)

	backupData := &models.SiteBackup{
		Contents: contents,
		Pages:    pages,
		Settings: settings,
	}

	jsonData, err := json.Marshal(backupData)
	if err != nil {
		return nil, "", fmt.Errorf("marshal backup: %w", err)
	}

	hash := sha256.Sum256(jsonData)
	return backupData, hex.EncodeToString(hash[:]), nil
}

func (s *BackupService) createEncryptedBackup(backupData *models.SiteBackup) ([]byte, error) {
	password, err := s.SettingService.GetSetting(constants.SettingPassword)
	if err != nil {
		return nil, fmt.Errorf("read site password: %w", err)
	}
	if password == "" {
		return nil, errors.New("site password is unset, refusing to create an unencrypted backup")
	}

	jsonData, err := json.MarshalIndent(backupData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}

	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)
	zipFile, err := zipWriter.Encrypt("backup.json", password, zip.AES256Encryption)
	if err != nil {
		return nil, fmt.Errorf("create encrypted zip entry: %w", err)
	}
	if _, err := zipFile.Write(jsonData); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	zipWriter.Close()

	return buf.Bytes(), nil
}

func (s *BackupService) BackupToGithub(repoName, branch, token string) error {
	backupData, newHash, err := s.generateBackupDataAndHash()
	if err != nil {
		return err
	}

	lastHash, _ := s.SettingService.GetSetting(constants.SettingGithubLastBackupHash)
	if newHash == lastHash {
		return ErrBackupNoChange
	}

	backupContent, err := s.createEncryptedBackup(backupData)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}

	parts := strings.Split(repoName, "/")
	if len(parts) != 2 {
		return errors.New("repository name must be in user/repo form")
	}
	owner, repo := parts[0], parts[1]
	path := fmt.Sprintf("atelier_backup_%s.zip", time.Now().Format("20060102150405"))
	message := "Automated backup from Atelier"

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	opts := &github.RepositoryContentFileOptions{
		Message: &message,
		Content: backupContent,
		Branch:  &branch,
	}

	_, _, err = client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	if err != nil {
		fileContent, _, _, getErr := client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: branch})
		if getErr != nil {
			return fmt.Errorf("create backup file on GitHub: %w", err)
		}
		opts.SHA = fileContent.SHA
		if _, _, updateErr := client.Repositories.UpdateFile(ctx, owner, repo, path, opts); updateErr != nil {
			return fmt.Errorf("update backup file on GitHub: %w", updateErr)
		}
	}

	return s.SettingService.UpdateSettings(map[string]string{
		constants.SettingGithubLastBackupHash: newHash,
	})
}

func (s *BackupService) BackupToWebdav(url, user, password string) error {
	backupData, newHash, err := s.generateBackupDataAndHash()
	if err != nil {
		return err
	}

	lastHash, _ := s.SettingService.GetSetting(constants.SettingWebdavLastBackupHash)
	if newHash == lastHash {
		return ErrBackupNoChange
	}

	backupContent, err := s.createEncryptedBackup(backupData)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}

	fileName := fmt.Sprintf("atelier_backup_%s.zip", time.Now().Format("20060102150405"))
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}

	req, err := http.NewRequest(http.MethodPut, url+fileName, bytes.NewReader(backupContent))
	if err != nil {
		return fmt.Errorf("build WebDAV request: %w", err)
	}
	if user != "" && password != "" {
		req.SetBasicAuth(user, password)
	}
	req.Header.Set("Content-Type", "application/zip")

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload to WebDAV server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("WebDAV server returned %s: %s", resp.Status, string(body))
	}

	return s.SettingService.UpdateSettings(map[string]string{
		constants.SettingWebdavLastBackupHash: newHash,
	})
}

func (s *BackupService) TestGithubConnection(repoName, token string) error {
	if repoName == "" || token == "" {
		return errors.New("repository name and token are required")
	}

	parts := strings.Split(repoName, "/")
	if len(parts) != 2 {
		return errors.New("repository name must be in user/repo form")
	}
	owner, repo := parts[0], parts[1]

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if _, _, err := client.Repositories.Get(ctx, owner, repo); err != nil {
		if _, _, userErr := client.Users.Get(ctx, ""); userErr != nil {
			return fmt.Errorf("GitHub token is invalid: %v", userErr)
		}
		return fmt.Errorf("cannot access GitHub repository (check name and permissions): %v", err)
	}
	return nil
}

func (s *BackupService) TestWebdavConnection(url, user, password string) error {
	if url == "" {
		return errors.New("server address is required")
	}

	req, err := http.NewRequest("OPTIONS", url, nil)
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	if user != "" && password != "" {
		req.SetBasicAuth(user, password)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to WebDAV server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("WebDAV server returned %s", resp.Status)
}
