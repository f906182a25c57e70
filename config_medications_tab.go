package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/carebell/pkg/models"
)

func (cw *ConfigWindow) buildMedicationsTab(sched models.Schedule) fyne.CanvasObject {
	cw.medsBox = container.NewVBox()
	cw.renderMedications(sched)

	add := widget.NewButtonWithIcon("Add Medication", theme.ContentAddIcon(), func() {
		cw.showMedicationDialog(nil)
	})
	add.Importance = widget.HighImportance

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabel(fmt.Sprintf("Today, %s", time.Now().Format("Monday January 2"))),
			widget.NewSeparator(),
		),
		container.NewHBox(add),
		nil, nil,
		container.NewVScroll(cw.medsBox),
	)
}

// renderMedications rebuilds the grouped medication rows
func (cw *ConfigWindow) renderMedications(sched models.Schedule) {
	cw.medsBox.RemoveAll()
	if len(sched.Medications) == 0 {
		empty := widget.NewLabel("No medications yet. Add the first one below.")
		empty.Importance = widget.MediumImportance
		cw.medsBox.Add(empty)
		return
	}

	now := time.Now()
	taken := cw.cb.intake.Taken(now)
	var part models.DayPart
	for _, m := range models.SortByTime(sched.Medications) {
		if p := models.PartOfDay(m.Time); p != part {
			part = p
			header := widget.NewLabel(string(part))
			header.TextStyle.Bold = true
			cw.medsBox.Add(header)
		}
		cw.medsBox.Add(cw.medicationRow(m, taken[m.ID]))
	}
	cw.medsBox.Refresh()
}

func (cw *ConfigWindow) medicationRow(med models.Medication, taken bool) fyne.CanvasObject {
	label := fmt.Sprintf("%s  %s", med.Time, med.Name)
	if med.Dosage != "" {
		label += fmt.Sprintf(" (%s)", med.Dosage)
	}

	takenCheck := widget.NewCheck("Taken", func(checked bool) {
		cw.cb.intake.SetTaken(time.Now(), med.ID, checked)
	})
	takenCheck.SetChecked(taken)

	enabled := widget.NewCheck("Alarm", nil)
	enabled.SetChecked(med.Enabled)
	enabled.OnChanged = func(on bool) {
		if err := cw.cb.schedule.SetMedicationEnabled(med.ID, on); err != nil {
			dialog.ShowError(err, cw.window)
		}
	}

	edit := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
		m := med
		cw.showMedicationDialog(&m)
	})
	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Remove Medication",
			fmt.Sprintf("Remove %s at %s?", med.Name, med.Time),
			func(ok bool) {
				if !ok {
					return
				}
				if err := cw.cb.schedule.RemoveMedication(med.ID); err != nil {
					dialog.ShowError(err, cw.window)
				}
			}, cw.window)
	})

	text := widget.NewLabel(label)
	if !med.Enabled {
		text.Importance = widget.LowImportance
	}
	return container.NewBorder(nil, nil, takenCheck, container.NewHBox(enabled, edit, remove), text)
}
