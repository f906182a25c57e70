package main

import (
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"github.com/borgmon/carebell/pkg/models"
)

func timeEntry(initial string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder("HH:MM")
	e.SetText(initial)
	e.Validator = func(s string) error {
		_, err := models.ParseTimeOfDay(strings.TrimSpace(s))
		return err
	}
	return e
}

func requiredEntry(placeholder, initial string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	e.SetText(initial)
	e.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}
	return e
}

// showMedicationDialog adds a medication, or edits med when it is not nil
func (cw *ConfigWindow) showMedicationDialog(med *models.Medication) {
	title, confirm := "Add Medication", "Add"
	initial := models.Medication{Time: models.TimeOfDay{Hour: 8}}
	if med != nil {
		title, confirm = "Edit Medication", "Save"
		initial = *med
	}

	name := requiredEntry("e.g. Levodopa", initial.Name)
	dosage := widget.NewEntry()
	dosage.SetPlaceHolder("e.g. 100mg, 1 tablet")
	dosage.SetText(initial.Dosage)
	at := timeEntry(initial.Time.String())

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Dosage", dosage),
		widget.NewFormItem("Time", at),
	}

	d := dialog.NewForm(title, confirm, "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		t, err := models.ParseTimeOfDay(strings.TrimSpace(at.Text))
		if err != nil {
			dialog.ShowError(err, cw.window)
			return
		}
		if med == nil {
			_, err = cw.cb.schedule.AddMedication(name.Text, dosage.Text, t)
		} else {
			updated := *med
			updated.Name, updated.Dosage, updated.Time = name.Text, strings.TrimSpace(dosage.Text), t
			err = cw.cb.schedule.UpdateMedication(updated)
		}
		if err != nil {
			dialog.ShowError(err, cw.window)
		}
	}, cw.window)
	d.Resize(fyne.NewSize(420, 280))
	d.Show()
}

func (cw *ConfigWindow) showAppointmentDialog() {
	title := requiredEntry("e.g. Neurologist", "")
	location := widget.NewEntry()
	location.SetPlaceHolder("Optional")
	date := widget.NewEntry()
	date.SetPlaceHolder("YYYY-MM-DD")
	date.Validator = func(s string) error {
		a := models.Appointment{Date: strings.TrimSpace(s)}
		return a.ValidateDate()
	}
	at := timeEntry("")

	items := []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Location", location),
		widget.NewFormItem("Date", date),
		widget.NewFormItem("Time", at),
	}

	d := dialog.NewForm("Add Appointment", "Add", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		t, err := models.ParseTimeOfDay(strings.TrimSpace(at.Text))
		if err != nil {
			dialog.ShowError(err, cw.window)
			return
		}
		_, err = cw.cb.schedule.AddAppointment(models.Appointment{
			Title:    title.Text,
			Location: strings.TrimSpace(location.Text),
			Date:     strings.TrimSpace(date.Text),
			Time:     t,
		})
		if err != nil {
			dialog.ShowError(err, cw.window)
		}
	}, cw.window)
	d.Resize(fyne.NewSize(420, 320))
	d.Show()
}

func (cw *ConfigWindow) showSourceDialog() {
	name := requiredEntry("e.g. Clinic calendar", "")
	url := widget.NewMultiLineEntry()
	url.SetPlaceHolder("https://calendar.example.com/ical/...")
	url.Wrapping = fyne.TextWrapBreak
	url.SetMinRowsVisible(4)
	url.Validator = func(s string) error {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return errors.New("URL must start with http:// or https://")
		}
		for _, existing := range cw.sources.Items() {
			if existing.URL == s {
				return fmt.Errorf("this calendar is already added as %q", existing.Name)
			}
		}
		return nil
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("URL", url),
	}
	d := dialog.NewForm("Add Calendar", "Add", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		cw.sources.SetItems(append(cw.sources.Items(), models.ICalSource{
			ID:   uuid.NewString(),
			Name: strings.TrimSpace(name.Text),
			URL:  strings.TrimSpace(url.Text),
		}))
		cw.markChanged()
	}, cw.window)
	d.Resize(fyne.NewSize(600, 300))
	d.Show()
}
