package entity

import "strings"

// WebhookPayload is the legacy PagerDuty v1 webhook delivery shape.
type WebhookPayload struct {
	Messages []WebhookMessage `json:"messages"`
}

// WebhookMessage is one event message within a webhook delivery.
type WebhookMessage struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData carries the incident snapshot of an incident-typed message.
type WebhookData struct {
	Incident WebhookIncident `json:"incident"`
}

// WebhookIncident is the incident snapshot embedded in webhook messages.
// The v1 payload predates the assignments list and carries flat user fields.
type WebhookIncident struct {
	Number         int          `json:"incident_number"`
	Status         string       `json:"status"`
	HTMLURL        string       `json:"html_url"`
	AssignedToUser *WebhookUser `json:"assigned_to_user,omitempty"`
	ResolvedByUser *WebhookUser `json:"resolved_by_user,omitempty"`
}

// WebhookUser identifies the user referenced by a webhook incident.
type WebhookUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsIncident reports whether the message carries an incident event.
func (m WebhookMessage) IsIncident() bool {
	return strings.HasPrefix(m.Type, "incident.")
}

// ResponsibleEmail returns the email of the user the incident concerns:
// the assignee, the resolver, or a placeholder when neither is present.
func (i WebhookIncident) ResponsibleEmail() string {
	switch {
	case i.AssignedToUser != nil:
		return i.AssignedToUser.Email
	case i.ResolvedByUser != nil:
		return i.ResolvedByUser.Email
	default:
		return "(???)"
	}
}
