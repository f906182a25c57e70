package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 7, Minute: 5}, tod)
	assert.Equal(t, "07:05", tod.String())

	for _, bad := range []string{"", "7", "24:00", "12:60", "ab:cd"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestMedicationJSONUsesMinuteKey(t *testing.T) {
	med := Medication{ID: "1", Name: "Levodopa", Dosage: "1 tablet", Time: MustTimeOfDay("07:00"), Enabled: true}

	data, err := json.Marshal(med)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"Levodopa","dosage":"1 tablet","time":"07:00","enabled":true}`, string(data))

	var back Medication
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, med, back)

	err = json.Unmarshal([]byte(`{"id":"2","time":"9:3"}`), &back)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestAppointmentAt(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	appt := Appointment{ID: "a", Date: "2026-10-16", Time: MustTimeOfDay("14:30")}

	at, ok := appt.At(loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 16, 14, 30, 0, 0, loc), at)

	appt.Date = "16/10/2026"
	_, ok = appt.At(loc)
	assert.False(t, ok)
	assert.ErrorIs(t, appt.ValidateDate(), ErrInvalidDate)
}

func TestPartOfDayAndSort(t *testing.T) {
	assert.Equal(t, Morning, PartOfDay(MustTimeOfDay("11:59")))
	assert.Equal(t, Afternoon, PartOfDay(MustTimeOfDay("12:00")))
	assert.Equal(t, Afternoon, PartOfDay(MustTimeOfDay("17:59")))
	assert.Equal(t, Night, PartOfDay(MustTimeOfDay("18:00")))

	meds := []Medication{
		{ID: "c", Time: MustTimeOfDay("20:00"), Enabled: true},
		{ID: "a", Time: MustTimeOfDay("08:00"), Enabled: false},
		{ID: "b", Time: MustTimeOfDay("09:00"), Enabled: true},
	}
	sorted := SortByTime(meds)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, "c", meds[0].ID, "input must not be reordered")

	earliest, ok := EarliestEnabled(meds)
	require.True(t, ok)
	assert.Equal(t, "09:00", earliest.String())

	_, ok = EarliestEnabled(nil)
	assert.False(t, ok)
}

func TestBatchMerge(t *testing.T) {
	batch := &FiredAlarmBatch{
		MinuteKey:   "09:00",
		Medications: []Medication{{ID: "m1"}},
	}
	added := batch.Merge(&FiredAlarmBatch{
		MinuteKey:    "09:01",
		Medications:  []Medication{{ID: "m1"}, {ID: "m2"}},
		Appointments: []Appointment{{ID: "a1"}},
	})

	assert.Equal(t, 2, added)
	assert.Equal(t, 3, batch.Len())
	assert.Equal(t, "09:01", batch.MinuteKey)

	assert.Equal(t, 0, batch.Merge(&FiredAlarmBatch{MinuteKey: "09:02", Medications: []Medication{{ID: "m2"}}}))
	assert.Equal(t, "09:01", batch.MinuteKey, "no-op merge keeps the key")
}

func TestConfigSnoozeOffsets(t *testing.T) {
	cfg := &Config{SnoozeOffsets: "10, 5,5,x,-1"}
	assert.Equal(t, []int{0, 5, 10}, cfg.GetSnoozeOffsets())

	cfg.SnoozeOffsets = ""
	assert.Equal(t, []int{0}, cfg.GetSnoozeOffsets())
}
