package main

import (
	"flag"
	"html/template"
	"io/fs"
	"net/http"

	"atelier/internal/handlers"
	"atelier/internal/repository"
	"atelier/internal/services"
	"atelier/internal/store"
	"atelier/internal/tasks"
	"atelier/internal/utils/tokenizer"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Global filesystems populated by assets_dev.go or assets_prod.go at startup.
var templatesFS fs.FS
var staticFS fs.FS

func createRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	add := func(name string, files ...string) {
		tpl, err := template.ParseFS(templatesFS, files...)
		if err != nil {
			log.Fatalf("failed to parse template %s: %v", name, err)
		}
		r.Add(name, tpl)
	}

	add("login.html", "base.html", "login.html")
	add("admin.html", "base.html", "admin.html", "_pagination.html")
	add("settings.html", "base.html", "settings.html")
	add("error.html", "base.html", "error.html")

	return r
}

func main() {
	addr := flag.String("addr", ":37412", "listen address")
	dataDir := flag.String("data", "data", "data directory")
	dictPath := flag.String("dict", "", "optional tokenizer dictionary file")
	unsafe := flag.Bool("unsafe", false, "allow insecure cookies")
	flag.Parse()

	manager := store.NewManager(*dataDir)
	sharedDB, err := manager.OpenShared()
	if err != nil {
		log.Fatal("failed to initialize shared database: ", err)
	}

	tok := tokenizer.New()
	if *dictPath != "" {
		if err := tok.LoadDictionary(*dictPath); err != nil {
			log.WithError(err).Warn("failed to load tokenizer dictionary")
		}
	}

	settingRepo := repository.NewSettingRepository(sharedDB)
	searchRepo := repository.NewSearchRepository(sharedDB)
	pageRepo := repository.NewMarkdownPageRepository(sharedDB)

	settingService := services.NewSettingService(settingRepo)
	contentService := services.NewContentService(manager, searchRepo, tok)
	pageService := services.NewPageService(pageRepo)
	backupService := services.NewBackupService(contentService, pageService, settingService)

	scheduler := tasks.NewScheduler(settingService, backupService)
	scheduler.Start()

	authHandler := handlers.NewAuthHandler(settingService)
	adminHandler := handlers.NewAdminHandler(contentService, pageService, settingService, backupService, scheduler.ReloadTasks)
	apiHandler := handlers.NewAPIHandler(contentService, pageService)

	r := gin.Default()
	r.HTMLRender = createRenderer()

	sessionStore := cookie.NewStore([]byte("secret-key-should-be-changed"))
	sessionStore.Options(sessions.Options{
		HttpOnly: true,
		Secure:   !*unsafe,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("atelier_session", sessionStore))
	r.Use(handlers.SettingsMiddleware(settingService))

	r.StaticFS("/static", http.FS(staticFS))

	r.GET("/login", authHandler.ShowLoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	admin := r.Group("/admin")
	admin.Use(handlers.AuthMiddleware())
	{
		admin.GET("/", adminHandler.Dashboard)
		admin.POST("/backup", adminHandler.BackupNow)
	}

	settings := r.Group("/settings")
	settings.Use(handlers.AuthMiddleware())
	{
		settings.GET("/", adminHandler.ShowSettingsPage)
		settings.POST("/", adminHandler.UpdateSettings)
	}

	api := r.Group("/api/v1")
	api.Use(handlers.APIAuthMiddleware(settingService))
	{
		api.GET("/contents", apiHandler.ListContents)
		api.PUT("/contents/:id", apiHandler.SaveContent)
		api.GET("/contents/:id", apiHandler.GetContent)
		api.DELETE("/contents/:id", apiHandler.DeleteContent)
		api.POST("/search/rebuild", apiHandler.RebuildSearchIndex)
		api.GET("/tags", apiHandler.ListTags)

		api.GET("/pages", apiHandler.ListPages)
		api.POST("/pages", apiHandler.SavePage)
		api.GET("/pages/:slug", apiHandler.GetPageBySlug)
		api.DELETE("/pages/:id", apiHandler.DeletePage)
	}

	log.Info("server starting on ", *addr)
	if err := r.Run(*addr); err != nil {
		log.Fatal("server exited: ", err)
	}
}
