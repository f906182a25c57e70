package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/ui/components"
)

func (cw *ConfigWindow) buildCalendarTab() fyne.CanvasObject {
	sources := append([]models.ICalSource(nil), cw.config.ICalSources...)

	var list fyne.CanvasObject
	cw.sources, list = components.NewListManager(sources, components.ListManagerConfig[models.ICalSource]{
		Render: func(s models.ICalSource) string {
			return fmt.Sprintf("%s  -  %s", s.Name, truncateString(s.URL, 60))
		},
		OnAdd:    cw.showSourceDialog,
		OnRemove: func(models.ICalSource) { cw.markChanged() },
	})

	// 15-minute steps up to two hours
	var intervalOptions []string
	for m := 15; m <= 120; m += 15 {
		intervalOptions = append(intervalOptions, fmt.Sprintf("%d min", m))
	}
	cw.updateIntervalSelect = widget.NewSelect(intervalOptions, func(string) { cw.markChanged() })
	cw.updateIntervalSelect.SetSelected(strconv.Itoa(cw.config.UpdateInterval) + " min")

	syncStatusLabel := widget.NewLabel("")
	syncStatusLabel.Importance = widget.MediumImportance

	cw.syncNowButton = widget.NewButtonWithIcon("Sync Now", theme.ViewRefreshIcon(), func() {
		if cw.hasActualChanges() {
			syncStatusLabel.SetText("Save first to sync new calendars")
			return
		}
		cw.cb.requestSync()
		syncStatusLabel.SetText("Sync started")
	})

	form := container.New(layout.NewFormLayout(),
		helpLabel("Calendars:", "Appointments from these iCal feeds are imported and ring like manual ones"),
		container.NewBorder(widget.NewSeparator(), nil, nil, nil, list),

		helpLabel("Update Interval:", "How often to fetch every calendar"),
		container.NewVBox(cw.updateIntervalSelect),

		helpLabel("Sync Calendars:", "Fetch all saved calendars now"),
		container.NewHBox(cw.syncNowButton, syncStatusLabel),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabel("Calendar Settings"),
		widget.NewSeparator(),
		form,
	)))
}
