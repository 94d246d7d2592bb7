package pager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// assignment is the reassignment target resolved from a trigger query:
// either a concrete user or an escalation policy.
type assignment struct {
	userID   string
	policyID string
	name     string
}

// trigger creates an incident through the events endpoint and reassigns it to
// the resolved target once the incident becomes visible on the REST API.
func (d *Dispatcher) trigger(ctx context.Context, chatUserID, userName string, cmd command.Trigger, replier Replier) error {
	query := cmd.Target
	description := cmd.Description

	switch {
	case query == "" && description == "":
		defaultSchedule := d.settings.DefaultSchedule()
		if defaultSchedule == "" {
			return replier.Reply(ctx, "No default schedule configured! Cannot send a page!")
		}
		d.logger.Info("triggering a default page", "schedule", defaultSchedule)
		query = defaultSchedule
		description = fmt.Sprintf("Generic Page - @%s", userName)
	case description == "":
		return replier.Reply(ctx,
			"Please include a user or schedule to page, like '/pager trigger infrastructure everything is on fire'.")
	default:
		d.logger.Info("triggering a page", "target", query)
		description = fmt.Sprintf("%s - @%s", description, userName)
	}

	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	triggeredBy, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, false)
	if err != nil {
		return err
	}

	requesterID := d.settings.DefaultUserID()
	if triggeredBy != nil {
		requesterID = triggeredBy.ID
	}
	if requesterID == "" {
		return replier.Reply(ctx,
			"Sorry, I can't figure out your PagerDuty account, and I don't have my own :( Can you tell me your PagerDuty email with `/pager me as you@yourdomain.com` or configure a default user ID?")
	}

	target, err := d.resolveTarget(ctx, chatUserID, query, replier)
	if err != nil || target == nil {
		return err
	}

	if !d.events.Configured() {
		return replier.Reply(ctx, "PagerDuty integration key is missing. Cannot trigger incidents.")
	}

	incidentKey, err := d.events.Trigger(ctx, description)
	if err != nil {
		return fmt.Errorf("triggering incident: %w", err)
	}

	if err := replier.Reply(ctx, ":pager: triggered! now assigning it to the right user..."); err != nil {
		return err
	}

	incidents, err := d.api.AwaitIncidents(ctx, incidentKey)
	if err != nil {
		return fmt.Errorf("waiting for incident %s: %w", incidentKey, err)
	}
	if len(incidents) == 0 {
		return replier.Reply(ctx, "Couldn't find the incident we just created to reassign. Please try again :/")
	}

	updates := make([]entity.IncidentUpdate, 0, len(incidents))
	for _, inc := range incidents {
		update := entity.IncidentUpdate{ID: inc.ID, Type: "incident_reference"}
		if target.policyID != "" {
			update.EscalationPolicy = &entity.Reference{
				ID:   target.policyID,
				Type: "escalation_policy_reference",
			}
		} else {
			update.Assignments = []entity.Assignment{
				{Assignee: entity.Reference{ID: target.userID, Type: "user_reference"}},
			}
		}
		updates = append(updates, update)
	}

	updated, err := d.api.UpdateIncidents(ctx, updates)
	if err != nil {
		d.logger.Error("incident reassignment failed", "incident_key", incidentKey, "error", err)
		return replier.Reply(ctx, "Problem reassigning the incident :/")
	}
	if len(updated) != len(updates) {
		return replier.Reply(ctx, "Problem reassigning the incident :/")
	}

	return replier.Reply(ctx, fmt.Sprintf(":pager: assigned to %s!", target.name))
}

// resolveTarget turns a trigger query into someone who can hold the pager.
// A chat user wins, then a unique (or exactly named) escalation policy, then
// whoever is currently on call for the first matching schedule. A nil
// assignment with a nil error means the user has been told nothing matched.
func (d *Dispatcher) resolveTarget(ctx context.Context, chatUserID, query string, replier Replier) (*assignment, error) {
	targetChatUser, err := d.chat.UserByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("looking up chat user %q: %w", query, err)
	}
	if targetChatUser != nil {
		user, err := d.identity.Resolve(ctx, targetChatUser, chatUserID, replier, true)
		if err != nil || user == nil {
			return nil, err
		}
		return &assignment{userID: user.ID, name: user.Name}, nil
	}

	policies, err := d.api.ListEscalationPolicies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing escalation policies: %w", err)
	}
	if policy := uniquePolicy(policies, query); policy != nil {
		return &assignment{policyID: policy.ID, name: policy.Name}, nil
	}

	schedules, err := d.api.ListSchedules(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) > 0 {
		user, err := d.currentOnCall(ctx, schedules[0].ID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return &assignment{userID: user.ID, name: user.Name}, nil
		}
	}

	return nil, replier.Reply(ctx, fmt.Sprintf(
		"Couldn't find a user or unique schedule or escalation policy matching %s :/", query))
}

// uniquePolicy picks the single match, or the single exact case-insensitive
// name match when the query was ambiguous.
func uniquePolicy(policies []entity.EscalationPolicy, query string) *entity.EscalationPolicy {
	if len(policies) == 1 {
		return &policies[0]
	}
	var exact []*entity.EscalationPolicy
	for i := range policies {
		if strings.EqualFold(policies[i].Name, query) {
			exact = append(exact, &policies[i])
		}
	}
	if len(exact) == 1 {
		return exact[0]
	}
	return nil
}

// currentOnCall returns the user holding the pager for a schedule right now,
// probing the coming hour and taking the first responder.
func (d *Dispatcher) currentOnCall(ctx context.Context, scheduleID string) (*entity.User, error) {
	now := time.Now()
	users, err := d.api.OnCallUsers(ctx, scheduleID, now, now.Add(time.Hour))
	if err != nil {
		return nil, fmt.Errorf("listing on-call users for %s: %w", scheduleID, err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
