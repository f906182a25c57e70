package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

func (cw *ConfigWindow) buildGeneralTab() fyne.CanvasObject {
	cw.autoStartCheck = widget.NewCheck("Start CareBell when I log in", func(bool) { cw.markChanged() })
	cw.autoStartCheck.SetChecked(cw.config.AutoStart)

	cw.notificationsCheck = widget.NewCheck("Show system notifications", func(bool) { cw.markChanged() })
	cw.notificationsCheck.SetChecked(cw.config.NotificationsEnabled)

	cw.dailyTipCheck = widget.NewCheck("Show a health tip with the first dose", func(bool) { cw.markChanged() })
	cw.dailyTipCheck.SetChecked(cw.config.DailyTipEnabled)

	var holdOptions []string
	for i := 1; i <= 10; i++ {
		holdOptions = append(holdOptions, fmt.Sprintf("%d s", i))
	}
	cw.holdTimeSelect = widget.NewSelect(holdOptions, func(string) { cw.markChanged() })
	cw.holdTimeSelect.SetSelected(fmt.Sprintf("%d s", cw.config.GetHoldTime()))

	cw.snoozeEntry = widget.NewEntry()
	cw.snoozeEntry.SetText(cw.config.SnoozeOffsets)
	cw.snoozeEntry.SetPlaceHolder("0,5,10")
	cw.snoozeEntry.Validator = validateOffsets
	cw.snoozeEntry.OnChanged = func(string) { cw.markChanged() }

	storagePath := cw.cb.app.Storage().RootURI().Path()
	storageEntry := widget.NewEntry()
	storageEntry.SetText(storagePath)
	storageEntry.Disable()
	openStorage := widget.NewButton("Open in File Manager", func() {
		if err := openFolder(storagePath); err != nil {
			cw.cb.logger.Warn("Opening storage folder failed", zap.Error(err))
		}
	})

	form := container.New(layout.NewFormLayout(),
		helpLabel("Auto Start:", "Keeps alarms and notifications running after a restart"),
		cw.autoStartCheck,

		helpLabel("Notifications:", "Desktop notifications repeat each dose until you respond"),
		cw.notificationsCheck,

		helpLabel("Reminder ladder:", "Minutes after each dose to notify again (applies after restart)"),
		cw.snoozeEntry,

		helpLabel("Dismiss hold:", "How long to hold the button that silences an alarm"),
		cw.holdTimeSelect,

		helpLabel("Daily tip:", "A short tip once a day, offline fallback when unavailable"),
		cw.dailyTipCheck,

		helpLabel("Storage:", "Settings and schedule are stored here"),
		container.NewBorder(nil, container.NewPadded(openStorage), nil, nil, storageEntry),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)))
}

func helpLabel(title, help string) fyne.CanvasObject {
	h := widget.NewLabel(help)
	h.Wrapping = fyne.TextWrapWord
	h.Importance = widget.MediumImportance
	return container.NewVBox(widget.NewLabel(title), h)
}

// validateOffsets accepts a comma-separated list of minutes between 0 and 120
func validateOffsets(s string) error {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n := parseLeadingInt(part, -1)
		if n < 0 || n > 120 || len(part) != len(fmt.Sprint(n)) {
			return fmt.Errorf("%q is not a number of minutes between 0 and 120", part)
		}
	}
	return nil
}

func openFolder(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
