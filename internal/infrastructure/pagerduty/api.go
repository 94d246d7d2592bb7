package pagerduty

import (
	"context"
	"net/url"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

type incidentsEnvelope struct {
	Incidents []entity.Incident `json:"incidents"`
}

type incidentEnvelope struct {
	Incident entity.Incident `json:"incident"`
}

type notesEnvelope struct {
	Notes []entity.Note `json:"notes"`
}

type noteEnvelope struct {
	Note entity.Note `json:"note"`
}

type schedulesEnvelope struct {
	Schedules []entity.Schedule `json:"schedules"`
}

type scheduleDetailEnvelope struct {
	Schedule struct {
		FinalSchedule struct {
			RenderedScheduleEntries []entity.ScheduleEntry `json:"rendered_schedule_entries"`
		} `json:"final_schedule"`
	} `json:"schedule"`
}

type overridesEnvelope struct {
	Overrides []entity.ScheduleEntry `json:"overrides"`
}

type overrideEnvelope struct {
	Override entity.Override `json:"override"`
}

type usersEnvelope struct {
	Users []entity.User `json:"users"`
}

type escalationPoliciesEnvelope struct {
	EscalationPolicies []entity.EscalationPolicy `json:"escalation_policies"`
}

type servicesEnvelope struct {
	Services []entity.Service `json:"services"`
}

type maintenanceWindowEnvelope struct {
	MaintenanceWindow struct {
		ID      string `json:"id"`
		EndTime string `json:"end_time"`
	} `json:"maintenance_window"`
}

// ListIncidents returns incidents in the given statuses, sorted by number.
func (c *Client) ListIncidents(ctx context.Context, statuses ...entity.IncidentStatus) ([]entity.Incident, error) {
	query := url.Values{}
	query.Set("sort_by", "incident_number:asc")
	for _, s := range statuses {
		query.Add("statuses[]", string(s))
	}

	var resp incidentsEnvelope
	if err := c.Get(ctx, "/incidents", query, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// FindIncidentsByKey returns the incidents created under an incident key.
// The events endpoint and the incident API are eventually consistent, so a
// fresh key may legitimately return nothing for a while.
func (c *Client) FindIncidentsByKey(ctx context.Context, incidentKey string) ([]entity.Incident, error) {
	query := url.Values{}
	query.Set("incident_key", incidentKey)

	var resp incidentsEnvelope
	if err := c.Get(ctx, "/incidents", query, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// GetIncident fetches a single incident by its PagerDuty ID.
func (c *Client) GetIncident(ctx context.Context, id string) (*entity.Incident, error) {
	var resp incidentEnvelope
	if err := c.Get(ctx, "/incidents/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Incident, nil
}

// UpdateIncidents applies a batch of incident updates in one PUT.
// The caller verifies len(returned) against the batch size.
func (c *Client) UpdateIncidents(ctx context.Context, updates []entity.IncidentUpdate) ([]entity.Incident, error) {
	body := map[string]any{"incidents": updates}
	var resp incidentsEnvelope
	if err := c.Put(ctx, "/incidents", body, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// ListNotes returns the notes on an incident.
func (c *Client) ListNotes(ctx context.Context, incidentID string) ([]entity.Note, error) {
	var resp notesEnvelope
	if err := c.Get(ctx, "/incidents/"+incidentID+"/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

// CreateNote adds a note to an incident on behalf of requesterID.
func (c *Client) CreateNote(ctx context.Context, incidentID, content, requesterID string) (*entity.Note, error) {
	body := map[string]any{
		"note":         map[string]string{"content": content},
		"requester_id": requesterID,
	}
	var resp noteEnvelope
	if err := c.Post(ctx, "/incidents/"+incidentID+"/notes", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

// ListSchedules returns schedules matching the query ("" lists all).
func (c *Client) ListSchedules(ctx context.Context, nameQuery string) ([]entity.Schedule, error) {
	query := url.Values{}
	if nameQuery != "" {
		query.Set("query", nameQuery)
	}

	var resp schedulesEnvelope
	if err := c.Get(ctx, "/schedules", query, &resp); err != nil {
		return nil, err
	}
	return resp.Schedules, nil
}

// ListScheduleEntries returns the rendered final-schedule entries of a
// schedule within [since, until).
func (c *Client) ListScheduleEntries(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error) {
	query := url.Values{}
	query.Set("since", since.Format(time.RFC3339))
	query.Set("until", until.Format(time.RFC3339))
	query.Set("overflow", "true")

	var resp scheduleDetailEnvelope
	if err := c.Get(ctx, "/schedules/"+scheduleID, query, &resp); err != nil {
		return nil, err
	}
	return resp.Schedule.FinalSchedule.RenderedScheduleEntries, nil
}

// ListOverrides returns the editable overrides of a schedule within
// [since, until).
func (c *Client) ListOverrides(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.ScheduleEntry, error) {
	query := url.Values{}
	query.Set("since", since.Format(time.RFC3339))
	query.Set("until", until.Format(time.RFC3339))
	query.Set("overflow", "true")
	query.Set("editable", "true")

	var resp overridesEnvelope
	if err := c.Get(ctx, "/schedules/"+scheduleID+"/overrides", query, &resp); err != nil {
		return nil, err
	}
	return resp.Overrides, nil
}

// OnCallUsers returns the users on call for a schedule within [since, until).
func (c *Client) OnCallUsers(ctx context.Context, scheduleID string, since, until time.Time) ([]entity.User, error) {
	query := url.Values{}
	query.Set("since", since.Format(time.RFC3339))
	query.Set("until", until.Format(time.RFC3339))

	var resp usersEnvelope
	if err := c.Get(ctx, "/schedules/"+scheduleID+"/users", query, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateOverride substitutes userID onto a schedule for [start, end).
func (c *Client) CreateOverride(ctx context.Context, scheduleID string, start, end time.Time, userID string) (*entity.Override, error) {
	body := map[string]any{
		"override": map[string]any{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
			"user": map[string]string{
				"id":   userID,
				"type": "user_reference",
			},
		},
	}
	var resp overrideEnvelope
	if err := c.Post(ctx, "/schedules/"+scheduleID+"/overrides", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Override, nil
}

// DeleteOverride removes an override. Boolean semantics follow Delete.
func (c *Client) DeleteOverride(ctx context.Context, scheduleID, overrideID string) (bool, error) {
	return c.Delete(ctx, "/schedules/"+scheduleID+"/overrides/"+overrideID)
}

// ListEscalationPolicies returns escalation policies matching the query.
func (c *Client) ListEscalationPolicies(ctx context.Context, nameQuery string) ([]entity.EscalationPolicy, error) {
	query := url.Values{}
	if nameQuery != "" {
		query.Set("query", nameQuery)
	}

	var resp escalationPoliciesEnvelope
	if err := c.Get(ctx, "/escalation_policies", query, &resp); err != nil {
		return nil, err
	}
	return resp.EscalationPolicies, nil
}

// ListServices returns all services.
func (c *Client) ListServices(ctx context.Context) ([]entity.Service, error) {
	var resp servicesEnvelope
	if err := c.Get(ctx, "/services", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// CreateMaintenanceWindow opens a maintenance window over the services.
// Returns the window ID and its end time as reported by the API.
func (c *Client) CreateMaintenanceWindow(ctx context.Context, start, end time.Time, serviceIDs []string) (id, endTime string, err error) {
	services := make([]entity.Reference, 0, len(serviceIDs))
	for _, sid := range serviceIDs {
		services = append(services, entity.Reference{ID: sid, Type: "service_reference"})
	}
	body := map[string]any{
		"maintenance_window": map[string]any{
			"start_time": start.Format(time.RFC3339),
			"end_time":   end.Format(time.RFC3339),
			"services":   services,
		},
	}

	var resp maintenanceWindowEnvelope
	if err := c.Post(ctx, "/maintenance_windows", body, &resp); err != nil {
		return "", "", err
	}
	return resp.MaintenanceWindow.ID, resp.MaintenanceWindow.EndTime, nil
}

// FindUsersByEmail queries the users endpoint by email address.
func (c *Client) FindUsersByEmail(ctx context.Context, email string) ([]entity.User, error) {
	query := url.Values{}
	query.Set("query", email)

	var resp usersEnvelope
	if err := c.Get(ctx, "/users", query, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
