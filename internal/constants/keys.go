package constants

const (
	// Context Keys
	ContextKeyIsLoggedIn = "isLoggedIn"
	ContextKeySettings   = "settings"

	// Session Keys
	SessionKeyAuthenticated = "authenticated"
	SessionKeySuccessFlash  = "success_flash"

	// Setting Keys
	SettingPassword             = "password"
	SettingSiteTitle            = "site_title"
	SettingSiteDescription      = "site_description"
	SettingGithubRepo           = "github_repo"
	SettingGithubBranch         = "github_branch"
	SettingGithubToken          = "github_token"
	SettingGithubInterval       = "github_interval"
	SettingGithubLastBackupHash = "github_last_backup_hash"
	SettingWebdavURL            = "webdav_url"
	SettingWebdavUser           = "webdav_user"
	SettingWebdavPassword       = "webdav_password"
	SettingWebdavInterval       = "webdav_interval"
	SettingWebdavLastBackupHash = "webdav_last_backup_hash"
)
