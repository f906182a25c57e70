package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
	"go.uber.org/zap"
)

// setupAutostart registers CareBell to launch at login so alarms and the
// notification ladder survive a reboot
func setupAutostart(enable bool, logger *zap.Logger) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if execPath, err = filepath.EvalSymlinks(execPath); err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	entry := &autostart.App{
		Name:        appName,
		DisplayName: "CareBell",
		Exec:        []string{execPath, "run"},
	}

	switch {
	case enable && !entry.IsEnabled():
		if err := entry.Enable(); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		logger.Info("Autostart enabled")
	case !enable && entry.IsEnabled():
		if err := entry.Disable(); err != nil {
			return fmt.Errorf("disable autostart: %w", err)
		}
		logger.Info("Autostart disabled")
	}
	return nil
}
