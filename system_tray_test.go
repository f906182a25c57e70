package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/borgmon/carebell/pkg/models"
)

func TestUpcomingToday(t *testing.T) {
	sched := models.Schedule{
		Medications: []models.Medication{
			{ID: "1", Name: "Levodopa", Time: models.MustTimeOfDay("08:00"), Enabled: true},
			{ID: "2", Name: "Levodopa", Time: models.MustTimeOfDay("13:00"), Enabled: true},
			{ID: "3", Name: "Paused", Time: models.MustTimeOfDay("14:00"), Enabled: false},
			{ID: "4", Name: "Ropinirole", Time: models.MustTimeOfDay("21:00"), Enabled: true},
		},
		Appointments: []models.Appointment{
			{ID: "a", Title: "Physio", Date: "2026-03-01", Time: models.MustTimeOfDay("13:00"), Enabled: true},
			{ID: "b", Title: "Tomorrow", Date: "2026-03-02", Time: models.MustTimeOfDay("09:00"), Enabled: true},
		},
	}
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)

	assert.Equal(t, []string{
		"13:00  Levodopa",
		"13:00  Physio",
		"21:00  Ropinirole",
	}, upcomingToday(sched, now, 5))
	assert.Len(t, upcomingToday(sched, now, 2), 2)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "Carbidopa-...", truncateString("Carbidopa-Levodopa", 13))
}
