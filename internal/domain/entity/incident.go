package entity

import "time"

// IncidentStatus is the lifecycle state of a PagerDuty incident.
type IncidentStatus string

const (
	StatusTriggered    IncidentStatus = "triggered"
	StatusAcknowledged IncidentStatus = "acknowledged"
	StatusResolved     IncidentStatus = "resolved"
)

// Incident is a PagerDuty incident as consumed by the bot.
// Incidents are never created directly through the REST surface; the trigger
// workflow goes through the legacy events endpoint and reconciles afterwards.
type Incident struct {
	ID          string         `json:"id"`
	Number      int            `json:"incident_number"`
	Status      IncidentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	Title       string         `json:"title"`
	HTMLURL     string         `json:"html_url"`
	IncidentKey string         `json:"incident_key,omitempty"`
	Assignments []Assignment   `json:"assignments,omitempty"`
}

// Assignment is one assignee reference on an incident.
type Assignment struct {
	Assignee Reference `json:"assignee"`
}

// Reference is the generic PagerDuty resource reference shape.
type Reference struct {
	ID      string `json:"id"`
	Type    string `json:"type,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// AssignedTo reports whether the incident carries an assignment for userID.
func (i *Incident) AssignedTo(userID string) bool {
	for _, a := range i.Assignments {
		if a.Assignee.ID == userID {
			return true
		}
	}
	return false
}

// Assignee returns the summary of the first assignee, or "" when unassigned.
func (i *Incident) Assignee() string {
	if len(i.Assignments) == 0 {
		return ""
	}
	return i.Assignments[0].Assignee.Summary
}

// Note is a note attached to an incident.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      Reference `json:"user"`
}

// IncidentUpdate is one incident reference in a batched incident update.
// Exactly one of Status, Assignments, or EscalationPolicy should be set.
type IncidentUpdate struct {
	ID               string         `json:"id"`
	Type             string         `json:"type"`
	Status           IncidentStatus `json:"status,omitempty"`
	Assignments      []Assignment   `json:"assignments,omitempty"`
	EscalationPolicy *Reference     `json:"escalation_policy,omitempty"`
}
