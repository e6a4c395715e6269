//go:build !release

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func init() {
	log.Info("running in debug mode, using live assets from filesystem")
	templatesFS = os.DirFS("templates")
	staticFS = os.DirFS("static")
}
