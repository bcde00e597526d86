package tui

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajramos/hostinbox/internal/config"
)

// initLogger opens the log file (log_file or hostinbox.log under the config dir) if possible
func (a *App) initLogger() {
	if a.logger != nil && a.logFile != nil {
		return
	}
	var lf string
	switch {
	case a.Config != nil && strings.TrimSpace(a.Config.LogFile) != "":
		lf = config.ExpandPath(a.Config.LogFile)
	case config.DefaultLogDir() != "":
		lf = filepath.Join(config.DefaultLogDir(), "hostinbox.log")
	default:
		return
	}
	if err := os.MkdirAll(filepath.Dir(lf), 0o755); err != nil {
		return
	}
	if f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		a.logFile = f
		a.logger = log.New(f, "[hostinbox] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// closeLogger closes the log file if opened
func (a *App) closeLogger() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
