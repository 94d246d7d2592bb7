package pager

import (
	"context"
	"strings"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

// fakeAPI implements PagerDutyAPI with overridable behavior per test.
type fakeAPI struct {
	incidents    []entity.Incident
	schedules    []entity.Schedule
	entries      map[string][]entity.ScheduleEntry
	overrides    map[string][]entity.ScheduleEntry
	onCall       map[string][]entity.User
	policies     []entity.EscalationPolicy
	services     []entity.Service
	usersByEmail map[string][]entity.User
	notes        []entity.Note

	updates       [][]entity.IncidentUpdate
	updateResult  []entity.Incident
	awaitedKeys   []string
	awaitResult   []entity.Incident
	createdOver   []string
	deleteResult  bool
	createdWindow []string
}

func (f *fakeAPI) ListIncidents(ctx context.Context, statuses ...entity.IncidentStatus) ([]entity.Incident, error) {
	want := map[entity.IncidentStatus]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	var out []entity.Incident
	for _, inc := range f.incidents {
		if want[inc.Status] {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (f *fakeAPI) FindIncidentsByKey(ctx context.Context, key string) ([]entity.Incident, error) {
	return f.awaitResult, nil
}

func (f *fakeAPI) GetIncident(ctx context.Context, id string) (*entity.Incident, error) {
	for i := range f.incidents {
		if f.incidents[i].ID == id {
			return &f.incidents[i], nil
		}
	}
	return nil, &notFoundError{}
}

type notFoundError struct{}

func (*notFoundError) Error() string { return "not found" }

func (f *fakeAPI) UpdateIncidents(ctx context.Context, updates []entity.IncidentUpdate) ([]entity.Incident, error) {
	f.updates = append(f.updates, updates)
	if f.updateResult != nil {
		return f.updateResult, nil
	}
	out := make([]entity.Incident, 0, len(updates))
	for _, u := range updates {
		found := false
		for _, inc := range f.incidents {
			if inc.ID == u.ID {
				inc.Status = u.Status
				out = append(out, inc)
				found = true
			}
		}
		if !found {
			out = append(out, entity.Incident{ID: u.ID, Status: u.Status})
		}
	}
	return out, nil
}

func (f *fakeAPI) AwaitIncidents(ctx context.Context, key string) ([]entity.Incident, error) {
	f.awaitedKeys = append(f.awaitedKeys, key)
	return f.awaitResult, nil
}

func (f *fakeAPI) ListNotes(ctx context.Context, incidentID string) ([]entity.Note, error) {
	return f.notes, nil
}

func (f *fakeAPI) CreateNote(ctx context.Context, incidentID, content, requesterID string) (*entity.Note, error) {
	return &entity.Note{Content: content}, nil
}

func (f *fakeAPI) ListSchedules(ctx context.Context, query string) ([]entity.Schedule, error) {
	if query == "" {
		return f.schedules, nil
	}
	var out []entity.Schedule
	for _, s := range f.schedules {
		if containsFold(s.Name, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListScheduleEntries(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error) {
	return f.entries[scheduleID], nil
}

func (f *fakeAPI) ListOverrides(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error) {
	return f.overrides[scheduleID], nil
}

func (f *fakeAPI) OnCallUsers(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.User, error) {
	return f.onCall[scheduleID], nil
}

func (f *fakeAPI) CreateOverride(ctx context.Context, scheduleID string, start, end time.Time, userID string) (*entity.Override, error) {
	f.createdOver = append(f.createdOver, scheduleID)
	return &entity.Override{
		ID:    "OVR1",
		Start: start,
		End:   end,
		User:  entity.Reference{ID: userID, Summary: "Alice Example"},
	}, nil
}

func (f *fakeAPI) DeleteOverride(ctx context.Context, scheduleID, overrideID string) (bool, error) {
	return f.deleteResult, nil
}

func (f *fakeAPI) ListEscalationPolicies(ctx context.Context, query string) ([]entity.EscalationPolicy, error) {
	var out []entity.EscalationPolicy
	for _, p := range f.policies {
		if containsFold(p.Name, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListServices(ctx context.Context) ([]entity.Service, error) {
	return f.services, nil
}

func (f *fakeAPI) CreateMaintenanceWindow(ctx context.Context, start, end time.Time, serviceIDs []string) (string, string, error) {
	f.createdWindow = serviceIDs
	return "MW1", end.Format(time.RFC3339), nil
}

func (f *fakeAPI) FindUsersByEmail(ctx context.Context, email string) ([]entity.User, error) {
	return f.usersByEmail[email], nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// fakeReplier records everything the workflow says back.
type fakeReplier struct {
	messages []string
}

func (r *fakeReplier) Reply(ctx context.Context, text string) error {
	r.messages = append(r.messages, text)
	return nil
}

// fakeChat serves chat users from in-memory maps.
type fakeChat struct {
	byID   map[string]*entity.ChatUser
	byName map[string]*entity.ChatUser
}

func (c *fakeChat) UserByID(ctx context.Context, id string) (*entity.ChatUser, error) {
	if u, ok := c.byID[id]; ok {
		return u, nil
	}
	return &entity.ChatUser{ID: id}, nil
}

func (c *fakeChat) UserByName(ctx context.Context, name string) (*entity.ChatUser, error) {
	return c.byName[name], nil
}

// fakeSettings is a static Settings implementation.
type fakeSettings struct {
	testEmail        string
	defaultUserID    string
	defaultSchedule  string
	allowedSchedules []string
}

func (s *fakeSettings) TestEmail() string          { return s.testEmail }
func (s *fakeSettings) DefaultUserID() string      { return s.defaultUserID }
func (s *fakeSettings) DefaultSchedule() string    { return s.defaultSchedule }
func (s *fakeSettings) AllowedSchedules() []string { return s.allowedSchedules }

// fakeEvents records triggered descriptions.
type fakeEvents struct {
	configured   bool
	descriptions []string
}

func (e *fakeEvents) Configured() bool { return e.configured }

func (e *fakeEvents) Trigger(ctx context.Context, description string) (string, error) {
	e.descriptions = append(e.descriptions, description)
	return "KEY1", nil
}

// fakeUserStore is a minimal in-memory UserEmailRepository.
type fakeUserStore struct {
	emails map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{emails: map[string]string{}}
}

func (s *fakeUserStore) Get(ctx context.Context, chatUserID string) (string, error) {
	if email, ok := s.emails[chatUserID]; ok {
		return email, nil
	}
	return "", repository.ErrNotFound
}

func (s *fakeUserStore) Set(ctx context.Context, chatUserID, email string) error {
	s.emails[chatUserID] = email
	return nil
}

func (s *fakeUserStore) Delete(ctx context.Context, chatUserID string) error {
	delete(s.emails, chatUserID)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...any) {}
func (nopLogger) Info(msg string, keysAndValues ...any)  {}
func (nopLogger) Warn(msg string, keysAndValues ...any)  {}
func (nopLogger) Error(msg string, keysAndValues ...any) {}
