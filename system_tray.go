package main

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/borgmon/carebell/pkg/models"
)

const trayUpcoming = 5

// refreshTray rebuilds the tray menu; safe to call from any goroutine
func (cb *CareBell) refreshTray(sched models.Schedule, now time.Time) {
	desk, ok := cb.app.(desktop.App)
	if !ok {
		return
	}
	upcoming := upcomingToday(sched, now, trayUpcoming)
	tip := cb.currentTip()

	fyne.Do(func() {
		var items []*fyne.MenuItem

		if len(upcoming) > 0 {
			header := fyne.NewMenuItem("Coming up today:", nil)
			header.Disabled = true
			items = append(items, header)
			for _, line := range upcoming {
				item := fyne.NewMenuItem("  "+line, nil)
				item.Disabled = true
				items = append(items, item)
			}
			items = append(items, fyne.NewMenuItemSeparator())
		}

		if tip != "" {
			items = append(items, fyne.NewMenuItem("Today's tip", func() {
				cb.showMessage("Today's tip", tip)
			}))
		}
		items = append(items,
			fyne.NewMenuItem("Encourage me", func() {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), cb.env.TipTimeout)
					defer cancel()
					msg := cb.tips.Motivate(ctx)
					fyne.Do(func() { cb.showMessage("For you", msg.Text) })
				}()
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Settings", cb.showConfigWindow),
			fyne.NewMenuItem("Sync Calendars", cb.requestSync),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", cb.quit),
		)

		desk.SetSystemTrayMenu(fyne.NewMenu("CareBell", items...))
		desk.SetSystemTrayIcon(resourceIcon)
	})
}

func (cb *CareBell) showMessage(title, text string) {
	w := cb.app.NewWindow(title)
	d := dialog.NewInformation(title, text, w)
	d.SetOnClosed(w.Close)
	w.Resize(fyne.NewSize(420, 220))
	w.Show()
	d.Show()
}

// upcomingToday lists the next enabled items still due today, earliest first
func upcomingToday(sched models.Schedule, now time.Time, limit int) []string {
	type entry struct {
		at   models.TimeOfDay
		text string
	}
	current := models.TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}
	today := models.DateKey(now)

	var entries []entry
	for _, m := range models.SortByTime(sched.Medications) {
		if m.Enabled && !m.Time.Before(current) {
			entries = append(entries, entry{m.Time, fmt.Sprintf("%s  %s", m.Time, truncateString(m.Name, 35))})
		}
	}
	for _, a := range sched.Appointments {
		if a.Enabled && a.Date == today && !a.Time.Before(current) {
			entries = append(entries, entry{a.Time, fmt.Sprintf("%s  %s", a.Time, truncateString(a.Title, 35))})
		}
	}

	// insertion sort keeps medications ahead of appointments at equal times
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].at.Before(entries[j-1].at); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	lines := make([]string, 0, limit)
	for _, e := range entries {
		if len(lines) == limit {
			break
		}
		lines = append(lines, e.text)
	}
	return lines
}

// truncateString shortens s to maxLen runes, adding "..." if needed
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
