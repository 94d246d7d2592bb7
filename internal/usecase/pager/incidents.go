package pager

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// showIncident looks an incident up by number or PagerDuty ID. Plain digits
// are matched against open and resolved incident numbers; anything else is
// treated as an incident ID.
func (d *Dispatcher) showIncident(ctx context.Context, id string, replier Replier) error {
	if number, err := strconv.Atoi(id); err == nil {
		incidents, err := d.api.ListIncidents(ctx,
			entity.StatusTriggered, entity.StatusAcknowledged, entity.StatusResolved)
		if err != nil {
			return fmt.Errorf("listing incidents: %w", err)
		}
		for _, inc := range incidents {
			if inc.Number == number {
				return replier.Reply(ctx, d.formatter.Incident(inc))
			}
		}
		return replier.Reply(ctx, fmt.Sprintf("No matching incident found for `%s`.", id))
	}

	incident, err := d.api.GetIncident(ctx, id)
	if err != nil {
		d.logger.Warn("incident lookup failed", "incident_id", id, "error", err)
		return replier.Reply(ctx, fmt.Sprintf("No matching incident found for `%s`.", id))
	}
	return replier.Reply(ctx, d.formatter.Incident(*incident))
}

func (d *Dispatcher) listIncidents(ctx context.Context, replier Replier) error {
	incidents, err := d.api.ListIncidents(ctx, entity.StatusTriggered, entity.StatusAcknowledged)
	if err != nil {
		return fmt.Errorf("listing incidents: %w", err)
	}
	return replier.Reply(ctx, d.formatter.IncidentList(incidents))
}

func (d *Dispatcher) listNotes(ctx context.Context, incidentID string, replier Replier) error {
	notes, err := d.api.ListNotes(ctx, incidentID)
	if err != nil {
		return fmt.Errorf("listing notes for %s: %w", incidentID, err)
	}
	return replier.Reply(ctx, d.formatter.Notes(notes))
}

func (d *Dispatcher) addNote(ctx context.Context, chatUserID string, cmd command.AddNote, replier Replier) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	note, err := d.api.CreateNote(ctx, cmd.IncidentID, cmd.Content, user.ID)
	if err != nil {
		d.logger.Error("creating note failed", "incident_id", cmd.IncidentID, "error", err)
		return replier.Reply(ctx, "Sorry, I couldn't do it :(")
	}
	if note == nil {
		return replier.Reply(ctx, "Sorry, I couldn't do it :(")
	}
	return replier.Reply(ctx, fmt.Sprintf("Got it! Note created: %s", note.Content))
}

// acknowledge handles both explicit incident numbers and the bare/bang forms.
// Re-acknowledging is allowed: an incident that times out goes back to
// triggered, so the scan covers both open statuses.
func (d *Dispatcher) acknowledge(ctx context.Context, chatUserID string, cmd command.Ack, replier Replier) error {
	if len(cmd.Numbers) > 0 {
		return d.updateIncidents(ctx, chatUserID, replier, cmd.Numbers,
			[]entity.IncidentStatus{entity.StatusTriggered, entity.StatusAcknowledged},
			entity.StatusAcknowledged)
	}
	return d.updateMine(ctx, chatUserID, replier, cmd.Force,
		[]entity.IncidentStatus{entity.StatusTriggered, entity.StatusAcknowledged},
		entity.StatusAcknowledged,
		"Nothing assigned to you to acknowledge. Acknowledge someone else's incident with `/pager ack <nnn>`",
		"Nothing to acknowledge")
}

// resolve mirrors acknowledge. Explicit numbers may resolve triggered
// incidents directly; the bare form only sweeps acknowledged ones.
func (d *Dispatcher) resolve(ctx context.Context, chatUserID string, cmd command.Resolve, replier Replier) error {
	if len(cmd.Numbers) > 0 {
		return d.updateIncidents(ctx, chatUserID, replier, cmd.Numbers,
			[]entity.IncidentStatus{entity.StatusTriggered, entity.StatusAcknowledged},
			entity.StatusResolved)
	}
	return d.updateMine(ctx, chatUserID, replier, cmd.Force,
		[]entity.IncidentStatus{entity.StatusAcknowledged},
		entity.StatusResolved,
		"Nothing assigned to you to resolve. Resolve someone else's incident with `/pager resolve <nnn>`",
		"Nothing to resolve")
}

// updateMine applies updatedStatus to the caller's assigned incidents, or to
// every incident in scanStatuses when force is set.
func (d *Dispatcher) updateMine(
	ctx context.Context,
	chatUserID string,
	replier Replier,
	force bool,
	scanStatuses []entity.IncidentStatus,
	updatedStatus entity.IncidentStatus,
	nothingMineMsg, nothingMsg string,
) error {
	incidents, err := d.api.ListIncidents(ctx, scanStatuses...)
	if err != nil {
		return fmt.Errorf("listing incidents: %w", err)
	}

	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	filtered := incidents
	if !force {
		filtered = nil
		for _, inc := range incidents {
			if inc.AssignedTo(user.ID) {
				filtered = append(filtered, inc)
			}
		}
	}

	if len(filtered) == 0 {
		if len(incidents) > 0 && !force {
			return replier.Reply(ctx, nothingMineMsg)
		}
		return replier.Reply(ctx, nothingMsg)
	}

	numbers := make([]int, 0, len(filtered))
	for _, inc := range filtered {
		numbers = append(numbers, inc.Number)
	}
	return d.updateIncidents(ctx, chatUserID, replier, numbers, scanStatuses, updatedStatus)
}

// updateIncidents finds the named incidents in the given statuses and applies
// updatedStatus in a single batched call. The caller must resolve to a
// PagerDuty user even though the status change itself is attributed to the
// configured From address.
func (d *Dispatcher) updateIncidents(
	ctx context.Context,
	chatUserID string,
	replier Replier,
	numbers []int,
	scanStatuses []entity.IncidentStatus,
	updatedStatus entity.IncidentStatus,
) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	incidents, err := d.api.ListIncidents(ctx, scanStatuses...)
	if err != nil {
		return fmt.Errorf("listing incidents: %w", err)
	}

	wanted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
	}

	var found []entity.Incident
	for _, inc := range incidents {
		if wanted[inc.Number] {
			found = append(found, inc)
		}
	}

	if len(found) == 0 {
		return replier.Reply(ctx, fmt.Sprintf(
			"Couldn't find incident(s) %s. Use `/pager incidents` for listing.", joinNumbers(numbers)))
	}

	updates := make([]entity.IncidentUpdate, 0, len(found))
	for _, inc := range found {
		updates = append(updates, entity.IncidentUpdate{
			ID:     inc.ID,
			Type:   "incident_reference",
			Status: updatedStatus,
		})
	}

	updated, err := d.api.UpdateIncidents(ctx, updates)
	if err != nil {
		d.logger.Error("incident update failed", "numbers", numbers, "error", err)
		return replier.Reply(ctx, fmt.Sprintf("Problem updating incidents %s", joinNumbers(numbers)))
	}
	if len(updated) != len(updates) {
		return replier.Reply(ctx, fmt.Sprintf("Problem updating incidents %s", joinNumbers(numbers)))
	}

	updatedNumbers := make([]int, 0, len(updated))
	for _, inc := range updated {
		updatedNumbers = append(updatedNumbers, inc.Number)
	}

	noun := "Incident"
	if len(updated) > 1 {
		noun = "Incidents"
	}
	return replier.Reply(ctx, fmt.Sprintf("%s %s %s", noun, joinNumbers(updatedNumbers), updatedStatus))
}

func joinNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}
