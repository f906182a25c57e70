package main

import (
	"slices"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/alarm"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/ui/components"
)

// ConfigWindow edits settings, medications, appointments and feeds.
// Settings are saved with the Save button; schedule edits apply at once.
type ConfigWindow struct {
	window fyne.Window
	cb     *CareBell
	config *models.Config

	// General tab
	autoStartCheck     *widget.Check
	notificationsCheck *widget.Check
	dailyTipCheck      *widget.Check
	holdTimeSelect     *widget.Select
	snoozeEntry        *widget.Entry

	// Medications tab
	medsBox *fyne.Container

	// Appointments tab
	appts *components.ListManager[models.Appointment]

	// Calendar tab
	sources              *components.ListManager[models.ICalSource]
	updateIntervalSelect *widget.Select
	syncNowButton        *widget.Button

	hasUnsavedChanges bool
	saveStatusLabel   *widget.Label
	saveButton        *widget.Button
}

// showConfigWindow opens the settings window or raises the open one.
// Runs on the fyne thread.
func (cb *CareBell) showConfigWindow() {
	if cb.configWindow != nil {
		cb.configWindow.window.Show()
		cb.configWindow.window.RequestFocus()
		return
	}

	cfg := *cb.cfg()
	cw := &ConfigWindow{cb: cb, config: &cfg}
	cw.window = cb.app.NewWindow("CareBell - Settings")
	cw.buildUI()
	cw.window.SetOnClosed(func() { cb.configWindow = nil })
	cb.configWindow = cw
	cw.window.Show()
}

func (cw *ConfigWindow) buildUI() {
	sched := cw.cb.schedule.Snapshot()
	tabs := container.NewAppTabs(
		container.NewTabItem("Medications", cw.buildMedicationsTab(sched)),
		container.NewTabItem("Appointments", cw.buildAppointmentsTab(sched)),
		container.NewTabItem("Calendars", cw.buildCalendarTab()),
		container.NewTabItem("General", cw.buildGeneralTab()),
	)

	cw.saveStatusLabel = widget.NewLabel("")
	cw.saveButton = widget.NewButton("Save", cw.save)
	cw.saveButton.Importance = widget.HighImportance
	cw.saveButton.Disable()

	previewButton := widget.NewButton("Test Alarm", cw.previewAlarm)
	closeButton := widget.NewButton("Close", cw.handleClose)

	buttonRow := container.NewBorder(nil, nil,
		container.NewHBox(cw.saveButton, cw.saveStatusLabel),
		container.NewHBox(previewButton, closeButton),
	)

	cw.window.SetContent(container.NewBorder(nil, container.NewPadded(buttonRow), nil, nil, tabs))
	cw.window.Resize(fyne.NewSize(900, 700))
	cw.window.CenterOnScreen()
	cw.window.SetCloseIntercept(cw.handleClose)
	cw.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			cw.handleClose()
		}
	})
}

// scheduleChanged redraws the schedule tabs. Runs on the fyne thread.
func (cw *ConfigWindow) scheduleChanged(sched models.Schedule) {
	cw.renderMedications(sched)
	cw.appts.SetItems(sched.Appointments)
}

func (cw *ConfigWindow) save() {
	cfg := cw.configFromUI()
	cw.saveButton.Disable()
	cw.setStatus("Saving...", widget.MediumImportance)

	go func() {
		err := cw.cb.applyConfig(cfg)
		fyne.Do(func() {
			if err != nil {
				cw.cb.logger.Error("Saving settings failed", zap.Error(err))
				cw.setStatus("Error: "+err.Error(), widget.DangerImportance)
				cw.updateSaveButtonState()
				return
			}
			cw.config = cfg
			cw.hasUnsavedChanges = false
			cw.updateSaveButtonState()
			cw.setStatus("Settings saved", widget.SuccessImportance)
			cw.clearStatusLater("Settings saved")
		})
	}()
}

func (cw *ConfigWindow) setStatus(text string, importance widget.Importance) {
	cw.saveStatusLabel.SetText(text)
	cw.saveStatusLabel.Importance = importance
	cw.saveStatusLabel.Refresh()
}

func (cw *ConfigWindow) clearStatusLater(text string) {
	time.AfterFunc(3*time.Second, func() {
		fyne.Do(func() {
			if cw.saveStatusLabel.Text == text {
				cw.setStatus("", widget.MediumImportance)
			}
		})
	})
}

// previewAlarm rings a sample alarm through the real session
func (cw *ConfigWindow) previewAlarm() {
	session := cw.cb.controller.Session()
	if session.State() == alarm.StateActive {
		dialog.ShowInformation("Alarm active", "An alarm is already ringing.", cw.window)
		return
	}

	now := time.Now()
	batch := &models.FiredAlarmBatch{
		MinuteKey: models.MinuteKey(now),
		DateKey:   models.DateKey(now),
		Medications: []models.Medication{{
			ID: "preview", Name: "Sample medication", Dosage: "1 tablet",
			Time: models.TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}, Enabled: true,
		}},
	}
	session.Dispatch(batch)
}

func (cw *ConfigWindow) configFromUI() *models.Config {
	cfg := *cw.config
	cfg.AutoStart = cw.autoStartCheck.Checked
	cfg.NotificationsEnabled = cw.notificationsCheck.Checked
	cfg.DailyTipEnabled = cw.dailyTipCheck.Checked
	cfg.HoldTimeSeconds = parseLeadingInt(cw.holdTimeSelect.Selected, cw.config.HoldTimeSeconds)
	cfg.SnoozeOffsets = cw.snoozeEntry.Text
	cfg.UpdateInterval = parseLeadingInt(cw.updateIntervalSelect.Selected, cw.config.UpdateInterval)
	cfg.ICalSources = append([]models.ICalSource(nil), cw.sources.Items()...)
	return &cfg
}

// parseLeadingInt reads "15 min" or "3 s" as 15 or 3
func parseLeadingInt(s string, fallback int) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(s[:end]); err == nil {
		return n
	}
	return fallback
}

func (cw *ConfigWindow) markChanged() {
	cw.hasUnsavedChanges = true
	cw.updateSaveButtonState()
}

func (cw *ConfigWindow) updateSaveButtonState() {
	if cw.saveButton == nil {
		return
	}
	if cw.hasUnsavedChanges {
		cw.saveButton.Enable()
	} else {
		cw.saveButton.Disable()
	}
}

func (cw *ConfigWindow) handleClose() {
	if !cw.hasActualChanges() {
		cw.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"You have unsaved changes. Are you sure you want to close?",
		func(confirmed bool) {
			if confirmed {
				cw.window.Close()
			}
		}, cw.window)
}

// hasActualChanges compares the form with the saved settings
func (cw *ConfigWindow) hasActualChanges() bool {
	return settingsDiffer(cw.configFromUI(), cw.config)
}

func settingsDiffer(a, b *models.Config) bool {
	if a.AutoStart != b.AutoStart ||
		a.NotificationsEnabled != b.NotificationsEnabled ||
		a.DailyTipEnabled != b.DailyTipEnabled ||
		a.GetHoldTime() != b.GetHoldTime() ||
		a.UpdateInterval != b.UpdateInterval ||
		!slices.Equal(a.GetSnoozeOffsets(), b.GetSnoozeOffsets()) ||
		len(a.ICalSources) != len(b.ICalSources) {
		return true
	}
	for i := range a.ICalSources {
		if a.ICalSources[i] != b.ICalSources[i] {
			return true
		}
	}
	return false
}
