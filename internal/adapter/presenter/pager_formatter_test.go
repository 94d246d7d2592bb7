package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

func TestIncident(t *testing.T) {
	f := NewPagerFormatter("/pager")
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	inc := entity.Incident{
		Number:    42,
		CreatedAt: created,
		Title:     "disk full on db-1",
		Assignments: []entity.Assignment{
			{Assignee: entity.Reference{Summary: "Alice Example"}},
		},
	}
	assert.Equal(t, "42: 2024-03-01T09:30:00Z disk full on db-1 - assigned to Alice Example\n", f.Incident(inc))

	inc.Assignments = nil
	assert.Equal(t, "42: 2024-03-01T09:30:00Z disk full on db-1 \n", f.Incident(inc))
}

func TestIncidentList(t *testing.T) {
	f := NewPagerFormatter("/pager")

	assert.Equal(t, "No open incidents", f.IncidentList(nil))

	incidents := []entity.Incident{
		{Number: 1, Status: entity.StatusTriggered, Title: "first"},
		{Number: 2, Status: entity.StatusAcknowledged, Title: "second"},
	}
	out := f.IncidentList(incidents)
	assert.Contains(t, out, "Triggered:\n----------\n1: ")
	assert.Contains(t, out, "Acknowledged:\n-------------\n2: ")
}

func TestUpdateSummary(t *testing.T) {
	f := NewPagerFormatter("/pager")

	payload := entity.WebhookPayload{Messages: []entity.WebhookMessage{
		{
			Type: "incident.trigger",
			Data: entity.WebhookData{Incident: entity.WebhookIncident{
				Number:         7,
				Status:         "triggered",
				HTMLURL:        "https://acme.pagerduty.com/incidents/P7",
				AssignedToUser: &entity.WebhookUser{Email: "alice@example.com"},
			}},
		},
	}}

	out := f.UpdateSummary(payload)
	assert.Contains(t, out, "You have 1 PagerDuty update(s):")
	assert.Contains(t, out, "Incident # 7 :")
	assert.Contains(t, out, "triggered and assigned to alice@example.com")
	assert.Contains(t, out, "To acknowledge: /pager ack 7")
	assert.Contains(t, out, "To resolve: /pager resolve 7")
}

func TestUpdateSummarySkipsNonIncidents(t *testing.T) {
	f := NewPagerFormatter("/pager")
	payload := entity.WebhookPayload{Messages: []entity.WebhookMessage{
		{Type: "service.update"},
	}}
	assert.Equal(t, "", f.UpdateSummary(payload))
}

func TestAmIOnCall(t *testing.T) {
	f := NewPagerFormatter("/pager")
	sched := entity.Schedule{Name: "ops", HTMLURL: "https://acme.pagerduty.com/schedules/POPS"}

	assert.Equal(t, "* Yes, you are on call for ops - https://acme.pagerduty.com/schedules/POPS",
		f.AmIOnCall(true, "", sched))
	assert.Equal(t, "* No, you are NOT on call for ops (but bob is) - https://acme.pagerduty.com/schedules/POPS",
		f.AmIOnCall(false, "bob", sched))
	assert.Equal(t, "* No, you are NOT on call for ops - https://acme.pagerduty.com/schedules/POPS",
		f.AmIOnCall(false, "", sched))
}

func TestScheduleEntriesSorted(t *testing.T) {
	f := NewPagerFormatter("/pager")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	entries := []entity.ScheduleEntry{
		{Start: base.Add(48 * time.Hour), End: base.Add(72 * time.Hour), User: entity.Reference{Summary: "bob"}},
		{ID: "Q1", Start: base, End: base.Add(24 * time.Hour), User: entity.Reference{Summary: "alice"}},
	}
	out := f.ScheduleEntries(entries, "UTC")

	lines := []string{
		"* (Q1) 2024-03-01T00:00:00Z - 2024-03-02T00:00:00Z alice",
		"* 2024-03-03T00:00:00Z - 2024-03-04T00:00:00Z bob",
	}
	assert.Equal(t, lines[0]+"\n"+lines[1]+"\n", out)
}

func TestHelpDescribesForcedResolveScope(t *testing.T) {
	help := NewPagerFormatter("/pager").Help()

	assert.Contains(t, help, "resolve! - resolve all acknowledged incidents, not just yours")
	assert.NotContains(t, help, "resolve all open incidents")
	assert.Contains(t, help, "ack! - ack all triggered incidents")
}
