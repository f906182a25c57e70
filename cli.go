package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2/app"

	"github.com/borgmon/carebell/pkg/calendar"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/schedule"
	"github.com/borgmon/carebell/pkg/store"
)

func loadSchedule() (*schedule.Service, *store.IntakeStore, error) {
	a := app.NewWithID(env.AppID)
	svc, err := schedule.NewService(store.NewScheduleStore(a), logger.Named("schedule"))
	if err != nil {
		return nil, nil, err
	}
	return svc, store.NewIntakeStore(a), nil
}

func runExport(path string, stdout io.Writer) error {
	svc, _, err := loadSchedule()
	if err != nil {
		return err
	}

	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return calendar.Export(w, svc.Snapshot(), time.Now())
}

func runList(w io.Writer) error {
	svc, intake, err := loadSchedule()
	if err != nil {
		return err
	}
	now := time.Now()
	printSchedule(w, svc.Snapshot(), intake.Taken(now), now)
	return nil
}

func printSchedule(w io.Writer, sched models.Schedule, taken map[string]bool, now time.Time) {
	fmt.Fprintf(w, "Medications (%s)\n", models.DateKey(now))
	var part models.DayPart
	for _, m := range models.SortByTime(sched.Medications) {
		if p := models.PartOfDay(m.Time); p != part {
			part = p
			fmt.Fprintf(w, "  %s\n", part)
		}
		fmt.Fprintf(w, "    %s %s %s%s\n", mark(taken[m.ID]), m.Time, m.Name, suffix(m.Dosage, m.Enabled))
	}

	fmt.Fprintln(w, "Appointments")
	for _, a := range sched.Appointments {
		fmt.Fprintf(w, "    %s %s %s%s\n", a.Date, a.Time, a.Title, suffix(a.Location, a.Enabled))
	}
}

func mark(taken bool) string {
	if taken {
		return "[x]"
	}
	return "[ ]"
}

func suffix(detail string, enabled bool) string {
	var parts []string
	if detail != "" {
		parts = append(parts, detail)
	}
	if !enabled {
		parts = append(parts, "disabled")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
