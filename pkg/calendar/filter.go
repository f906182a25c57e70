package calendar

import (
	"time"

	"go.uber.org/zap"
)

// window is the span of time an import looks at
type window struct {
	from  time.Time
	until time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.from) && t.Before(w.until)
}

func (f *Fetcher) shouldInclude(event feedEvent, w window, stats *filterStats) bool {
	if event.Start.IsZero() {
		stats.missingTime++
		f.logger.Debug("Filtered: missing time", zap.String("title", event.Title))
		return false
	}

	if event.Status == "CANCELLED" {
		stats.cancelled++
		f.logger.Debug("Filtered: cancelled", zap.String("title", event.Title), zap.Time("start", event.Start))
		return false
	}

	if isAllDay(event) {
		stats.allDay++
		f.logger.Debug("Filtered: all-day", zap.String("title", event.Title), zap.Time("start", event.Start))
		return false
	}

	if !w.contains(event.Start) {
		stats.outsideWindow++
		return false
	}

	return true
}

// isAllDay treats DATE-valued starts and spans of a day or more as all-day;
// neither has a meaningful minute to ring at
func isAllDay(event feedEvent) bool {
	if event.AllDay {
		return true
	}
	return event.Start.Format("2006-01-02") != event.End.Format("2006-01-02") &&
		event.End.Sub(event.Start) >= 24*time.Hour
}

type filterStats struct {
	components    int
	events        int
	missingTime   int
	cancelled     int
	allDay        int
	outsideWindow int
	duplicates    int
}

func (s *filterStats) filtered() int {
	return s.missingTime + s.cancelled + s.allDay + s.outsideWindow + s.duplicates
}

func (s *filterStats) fields(included int) []zap.Field {
	return []zap.Field{
		zap.Int("components", s.components),
		zap.Int("events", s.events),
		zap.Int("included", included),
		zap.Int("cancelled", s.cancelled),
		zap.Int("all_day", s.allDay),
		zap.Int("outside_window", s.outsideWindow),
		zap.Int("missing_time", s.missingTime),
		zap.Int("duplicates", s.duplicates),
	}
}
