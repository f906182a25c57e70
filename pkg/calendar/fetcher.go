// Package calendar imports appointments from iCalendar feeds and exports the
// schedule as an .ics file.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

// DefaultHorizon is how far ahead a feed import looks
const DefaultHorizon = 14 * 24 * time.Hour

// Fetcher downloads feeds and turns their events into appointments
type Fetcher struct {
	client  *resty.Client
	clock   clock.Clock
	horizon time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a fetcher; a nil clock uses the system clock and a
// non-positive horizon uses DefaultHorizon
func NewFetcher(c clock.Clock, horizon time.Duration, logger *zap.Logger) *Fetcher {
	if c == nil {
		c = clock.System{}
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetHeader("Accept", "text/calendar").
		SetTimeout(30 * time.Second)

	return &Fetcher{client: client, clock: c, horizon: horizon, logger: logger}
}

// FetchAppointments downloads source and returns its upcoming appointments
func (f *Fetcher) FetchAppointments(ctx context.Context, source models.ICalSource) ([]models.Appointment, error) {
	resp, err := f.client.R().SetContext(ctx).Get(source.URL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", source.Name, resp.StatusCode())
	}

	appts, err := f.Parse(strings.NewReader(resp.String()), source.ID)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", source.Name, err)
	}
	return appts, nil
}

// Parse reads an iCalendar stream and returns appointments starting between
// now and the horizon. Every appointment gets SourceID sourceID.
func (f *Fetcher) Parse(r io.Reader, sourceID string) ([]models.Appointment, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if err := validateICalFormat(string(body)); err != nil {
		return nil, err
	}

	now := f.clock.Now()
	w := window{from: now.Truncate(time.Minute), until: now.Add(f.horizon)}

	decoder := ical.NewDecoder(strings.NewReader(string(body)))
	stats := &filterStats{}
	seenIDs := make(map[string]bool)
	seenKeys := make(map[string]bool)
	appts := []models.Appointment{}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			stats.components++
			if comp.Name != ical.CompEvent {
				continue
			}
			stats.events++

			normalizeComponentTimezones(comp)
			event := parseEvent(comp)

			instances := []feedEvent{event}
			if comp.Props.Get(ical.PropRecurrenceRule) != nil {
				instances = f.expandRecurring(comp, event, w)
			}

			for _, inst := range instances {
				if !f.shouldInclude(inst, w, stats) {
					continue
				}
				appt := toAppointment(inst, sourceID)
				if isDuplicate(appt, seenIDs, seenKeys) {
					stats.duplicates++
					continue
				}
				appts = append(appts, appt)
			}
		}
	}

	f.logger.Info("Feed parsed", append(stats.fields(len(appts)), zap.String("source", sourceID))...)
	return appts, nil
}

func toAppointment(event feedEvent, sourceID string) models.Appointment {
	id := event.UID
	if id == "" {
		id = sourceID + "-" + event.Start.Format(time.RFC3339) + "-" + event.Title
	}
	return models.Appointment{
		ID:       id,
		Title:    event.Title,
		Location: event.Location,
		Date:     models.DateKey(event.Start),
		Time:     models.TimeOfDay{Hour: event.Start.Hour(), Minute: event.Start.Minute()},
		Enabled:  true,
		SourceID: sourceID,
	}
}

func validateICalFormat(body string) error {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}

	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", preview)
	}
	return nil
}

func isDuplicate(appt models.Appointment, seenIDs, seenKeys map[string]bool) bool {
	key := appt.Title + "|" + appt.Date + "|" + appt.Time.String()
	if seenIDs[appt.ID] || seenKeys[key] {
		return true
	}
	seenIDs[appt.ID] = true
	seenKeys[key] = true
	return false
}
