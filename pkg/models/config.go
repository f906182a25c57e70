package models

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultSnoozeOffsets is the background retry ladder in minutes
const DefaultSnoozeOffsets = "0,5,10"

// Config holds application configuration
type Config struct {
	AutoStart            bool         `json:"auto_start"`
	NotificationsEnabled bool         `json:"notifications_enabled"` // system notifications and background delivery
	HoldTimeSeconds      int          `json:"hold_time_seconds"`     // dismiss button hold time
	SnoozeOffsets        string       `json:"snooze_offsets"`        // comma-separated minutes after the dose time
	DailyTipEnabled      bool         `json:"daily_tip_enabled"`
	ICalSources          []ICalSource `json:"ical_sources"`    // appointment feeds
	UpdateInterval       int          `json:"update_interval"` // feed sync, minutes
}

// ICalSource represents a named iCal calendar source
type ICalSource struct {
	ID   string `json:"id"`   // Unique identifier
	Name string `json:"name"` // Display name
	URL  string `json:"url"`  // iCal URL
}

// GetSnoozeOffsets returns the ladder offsets in minutes, sorted, always including 0
func (c *Config) GetSnoozeOffsets() []int {
	offsets := []int{0}
	seen := map[int]bool{0: true}

	for _, part := range strings.Split(c.SnoozeOffsets, ",") {
		part = strings.TrimSpace(part)
		if min, err := strconv.Atoi(part); err == nil {
			if min > 0 && !seen[min] {
				offsets = append(offsets, min)
				seen[min] = true
			}
		}
	}

	sort.Ints(offsets)
	return offsets
}

// GetHoldTime returns the hold duration clamped to 1..10 seconds
func (c *Config) GetHoldTime() int {
	switch {
	case c.HoldTimeSeconds < 1:
		return 3
	case c.HoldTimeSeconds > 10:
		return 10
	default:
		return c.HoldTimeSeconds
	}
}

// HasFeeds reports whether any appointment feed is configured
func (c *Config) HasFeeds() bool {
	for _, s := range c.ICalSources {
		if s.Validate() {
			return true
		}
	}
	return false
}

// Validate checks if the iCal source has required fields
func (s *ICalSource) Validate() bool {
	return s.Name != "" && s.URL != ""
}
