package entity

import (
	"sort"
	"time"
)

// Schedule is a named on-call rotation. Read-only from the bot's perspective.
type Schedule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// ScheduleEntry is one rendered shift of a schedule's final schedule, or an
// override when ID is set. Entries are display-only projections.
type ScheduleEntry struct {
	ID    string    `json:"id,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	User  Reference `json:"user"`
}

// Override is a temporary substitution of the on-call user within a window.
type Override struct {
	ID    string    `json:"id,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	User  Reference `json:"user"`
}

// SortEntriesByStart orders rendered entries ascending by start time.
// Human-readable schedule output depends on this ordering.
func SortEntriesByStart(entries []ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
}
