package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/borgmon/carebell/pkg/models"
)

func TestParseLeadingInt(t *testing.T) {
	assert.Equal(t, 15, parseLeadingInt("15 min", 60))
	assert.Equal(t, 3, parseLeadingInt("3 s", 5))
	assert.Equal(t, 60, parseLeadingInt("", 60))
	assert.Equal(t, 60, parseLeadingInt("min", 60))
}

func TestSettingsDiffer(t *testing.T) {
	base := &models.Config{
		NotificationsEnabled: true,
		HoldTimeSeconds:      3,
		SnoozeOffsets:        "0,5,10",
		UpdateInterval:       60,
		ICalSources:          []models.ICalSource{{ID: "a", Name: "Clinic", URL: "https://example.com/a.ics"}},
	}

	same := *base
	same.SnoozeOffsets = "10, 5"
	same.ICalSources = append([]models.ICalSource(nil), base.ICalSources...)
	assert.False(t, settingsDiffer(&same, base))

	clamped := *base
	clamped.HoldTimeSeconds = 0
	assert.False(t, settingsDiffer(&clamped, base))

	renamed := *base
	renamed.ICalSources = []models.ICalSource{{ID: "a", Name: "Hospital", URL: "https://example.com/a.ics"}}
	assert.True(t, settingsDiffer(&renamed, base))

	ladder := *base
	ladder.SnoozeOffsets = "0,15"
	assert.True(t, settingsDiffer(&ladder, base))
}

func TestValidateOffsets(t *testing.T) {
	assert.NoError(t, validateOffsets("0,5,10"))
	assert.NoError(t, validateOffsets(" 5 , 30,"))
	assert.Error(t, validateOffsets("5,abc"))
	assert.Error(t, validateOffsets("5x"))
	assert.Error(t, validateOffsets("500"))
}

func TestAppointmentLine(t *testing.T) {
	a := models.Appointment{Title: "Neurologist", Location: "Clinic", Date: "2026-03-02", Time: models.MustTimeOfDay("10:30"), SourceID: "cal"}
	assert.Equal(t, "2026-03-02 10:30  Neurologist @ Clinic  [calendar]  (off)", appointmentLine(a))

	a.Enabled, a.Location, a.SourceID = true, "", ""
	assert.Equal(t, "2026-03-02 10:30  Neurologist", appointmentLine(a))
}
