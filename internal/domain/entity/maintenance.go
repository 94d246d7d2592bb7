package entity

import "time"

// MaintenanceWindow suppresses alerts for the referenced services within a
// time range. Created by the bot, never read back except for confirmation.
type MaintenanceWindow struct {
	ID        string      `json:"id,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Services  []Reference `json:"services"`
}
