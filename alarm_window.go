package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/platform"
	"github.com/borgmon/carebell/pkg/ui/components"
)

// AlarmWindow is the blocking full-screen alarm. It implements
// alarm.Presenter; every method hands its work to the fyne thread and
// returns at once.
type AlarmWindow struct {
	app       fyne.App
	holdTime  func() time.Duration
	onDismiss func()
	onTaken   func(medID string, taken bool)
	logger    *zap.Logger

	// fyne thread only
	window    fyne.Window
	guard     *quitGuard
	stopWatch chan struct{}
}

// NewAlarmWindow prepares the presenter; no window exists until ShowAlarm
func NewAlarmWindow(app fyne.App, holdTime func() time.Duration, onDismiss func(), onTaken func(string, bool), logger *zap.Logger) *AlarmWindow {
	return &AlarmWindow{
		app:       app,
		holdTime:  holdTime,
		onDismiss: onDismiss,
		onTaken:   onTaken,
		logger:    logger,
	}
}

func (aw *AlarmWindow) ShowAlarm(batch *models.FiredAlarmBatch) {
	batch = batch.Clone()
	fyne.Do(func() {
		if aw.window == nil {
			aw.window = aw.app.NewWindow("CareBell Alarm")
			aw.window.SetFullScreen(true)
			// only the hold button may close the alarm
			aw.window.SetCloseIntercept(func() {
				aw.logger.Info("Close blocked, hold the dismiss button instead")
			})
			aw.guard = newQuitGuard(aw.logger)
			aw.stopWatch = make(chan struct{})
			go aw.keepInFront(aw.stopWatch)
		}
		aw.window.SetContent(aw.content(batch))
		aw.window.Show()
		aw.window.RequestFocus()
		platform.Raise()
	})
}

func (aw *AlarmWindow) UpdateAlarm(batch *models.FiredAlarmBatch) {
	batch = batch.Clone()
	fyne.Do(func() {
		if aw.window == nil {
			return
		}
		aw.window.SetContent(aw.content(batch))
		aw.window.RequestFocus()
	})
}

func (aw *AlarmWindow) CloseAlarm() {
	fyne.Do(func() {
		if aw.window == nil {
			return
		}
		close(aw.stopWatch)
		aw.guard.release()
		aw.window.Close()
		aw.window, aw.guard, aw.stopWatch = nil, nil, nil
	})
}

func (aw *AlarmWindow) content(batch *models.FiredAlarmBatch) fyne.CanvasObject {
	heading := canvas.NewText(alarmHeading(batch), theme.Color(theme.ColorNameError))
	heading.TextSize = 40
	heading.TextStyle.Bold = true
	heading.Alignment = fyne.TextAlignCenter

	minute := widget.NewLabel(batch.MinuteKey)
	minute.Alignment = fyne.TextAlignCenter
	minute.TextStyle.Monospace = true

	items := container.NewVBox()
	for _, m := range batch.Medications {
		med := m
		label := med.Name
		if med.Dosage != "" {
			label = fmt.Sprintf("%s (%s)", med.Name, med.Dosage)
		}
		check := widget.NewCheck(label, func(taken bool) {
			if aw.onTaken != nil {
				aw.onTaken(med.ID, taken)
			}
		})
		items.Add(check)
	}
	for _, a := range batch.Appointments {
		text := a.Title
		if a.Location != "" {
			text = fmt.Sprintf("%s at %s", a.Title, a.Location)
		}
		label := widget.NewLabel(text)
		label.TextStyle.Bold = true
		items.Add(label)
	}

	hold := aw.holdTime()
	dismiss := components.NewHoldButton(
		fmt.Sprintf("Hold %ds to dismiss", int(hold.Seconds())),
		hold,
		aw.onDismiss,
	)

	body := container.NewVBox(
		container.NewPadded(heading),
		minute,
		widget.NewSeparator(),
		container.NewCenter(items),
		widget.NewSeparator(),
		container.NewCenter(dismiss),
	)
	return container.NewPadded(container.NewCenter(body))
}

func alarmHeading(batch *models.FiredAlarmBatch) string {
	switch {
	case len(batch.Appointments) == 0:
		return "Time for your medication"
	case len(batch.Medications) == 0:
		return "Appointment reminder"
	default:
		return "Medication and appointment"
	}
}

// keepInFront raises the alarm whenever another application takes focus
func (aw *AlarmWindow) keepInFront(stop <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if platform.Frontmost() {
				continue
			}
			aw.logger.Debug("Alarm lost focus, raising")
			platform.Raise()
			fyne.Do(func() {
				if aw.window != nil {
					aw.window.Show()
					aw.window.RequestFocus()
				}
			})
		}
	}
}
