package pager

import (
	"context"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// PagerDutyAPI defines the REST surface the command workflows depend on.
type PagerDutyAPI interface {
	ListIncidents(ctx context.Context, statuses ...entity.IncidentStatus) ([]entity.Incident, error)
	FindIncidentsByKey(ctx context.Context, incidentKey string) ([]entity.Incident, error)
	GetIncident(ctx context.Context, id string) (*entity.Incident, error)
	UpdateIncidents(ctx context.Context, updates []entity.IncidentUpdate) ([]entity.Incident, error)
	AwaitIncidents(ctx context.Context, incidentKey string) ([]entity.Incident, error)

	ListNotes(ctx context.Context, incidentID string) ([]entity.Note, error)
	CreateNote(ctx context.Context, incidentID, content, requesterID string) (*entity.Note, error)

	ListSchedules(ctx context.Context, nameQuery string) ([]entity.Schedule, error)
	ListScheduleEntries(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error)
	ListOverrides(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error)
	OnCallUsers(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.User, error)
	CreateOverride(ctx context.Context, scheduleID string, start, end time.Time, userID string) (*entity.Override, error)
	DeleteOverride(ctx context.Context, scheduleID, overrideID string) (bool, error)

	ListEscalationPolicies(ctx context.Context, nameQuery string) ([]entity.EscalationPolicy, error)
	ListServices(ctx context.Context) ([]entity.Service, error)
	CreateMaintenanceWindow(ctx context.Context, start, end time.Time, serviceIDs []string) (id, endTime string, err error)
	FindUsersByEmail(ctx context.Context, email string) ([]entity.User, error)
}

// EventsAPI triggers new incidents through the events integration endpoint.
type EventsAPI interface {
	Configured() bool
	Trigger(ctx context.Context, description string) (incidentKey string, err error)
}

// ChatDirectory looks up chat workspace users.
type ChatDirectory interface {
	UserByID(ctx context.Context, id string) (*entity.ChatUser, error)
	UserByName(ctx context.Context, name string) (*entity.ChatUser, error)
}

// Replier delivers command responses back to the invoking conversation.
type Replier interface {
	Reply(ctx context.Context, text string) error
}

// Settings exposes the reloadable configuration the workflows read per call.
type Settings interface {
	TestEmail() string
	DefaultUserID() string
	DefaultSchedule() string
	AllowedSchedules() []string
}

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
