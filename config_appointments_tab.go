package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/calendar"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/ui/components"
)

func (cw *ConfigWindow) buildAppointmentsTab(sched models.Schedule) fyne.CanvasObject {
	var list fyne.CanvasObject
	cw.appts, list = components.NewListManager(sched.Appointments, components.ListManagerConfig[models.Appointment]{
		Render:   appointmentLine,
		OnAdd:    cw.showAppointmentDialog,
		OnRemove: cw.removeAppointment,
	})

	toggle := widget.NewButton("Alarm On/Off", func() {
		a, ok := cw.appts.Selected()
		if !ok {
			return
		}
		if err := cw.cb.schedule.SetAppointmentEnabled(a.ID, !a.Enabled); err != nil {
			dialog.ShowError(err, cw.window)
		}
	})
	export := widget.NewButtonWithIcon("Export .ics", theme.DocumentSaveIcon(), cw.exportCalendar)

	help := widget.NewLabel("Appointments ring once at their date and time. Imported ones are refreshed on every calendar sync.")
	help.Wrapping = fyne.TextWrapWord
	help.Importance = widget.MediumImportance

	return container.NewBorder(
		container.NewVBox(help, widget.NewSeparator()),
		container.NewHBox(toggle, export),
		nil, nil,
		list,
	)
}

func appointmentLine(a models.Appointment) string {
	line := fmt.Sprintf("%s %s  %s", a.Date, a.Time, a.Title)
	if a.Location != "" {
		line += " @ " + a.Location
	}
	if a.SourceID != "" {
		line += "  [calendar]"
	}
	if !a.Enabled {
		line += "  (off)"
	}
	return line
}

func (cw *ConfigWindow) removeAppointment(a models.Appointment) {
	if err := cw.cb.schedule.RemoveAppointment(a.ID); err != nil {
		dialog.ShowError(err, cw.window)
		cw.appts.SetItems(cw.cb.schedule.Snapshot().Appointments)
	}
}

func (cw *ConfigWindow) exportCalendar() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, cw.window)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()

		if err := calendar.Export(w, cw.cb.schedule.Snapshot(), time.Now()); err != nil {
			cw.cb.logger.Error("Calendar export failed", zap.Error(err))
			dialog.ShowError(err, cw.window)
			return
		}
		cw.cb.logger.Info("Calendar exported", zap.String("uri", w.URI().String()))
		cw.setStatus("Calendar exported", widget.SuccessImportance)
	}, cw.window)
	d.SetFileName("carebell.ics")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".ics"}))
	d.Show()
}
