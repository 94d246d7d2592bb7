package pager

import (
	"context"
	"fmt"
	"time"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// overrideDateLayouts are the accepted forms for override start/end stamps.
var overrideDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseOverrideDate(s string) (time.Time, bool) {
	for _, layout := range overrideDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// createOverride puts a user on a schedule for an explicit window. The
// override lands on every schedule matching the name, same as the listing
// commands.
func (d *Dispatcher) createOverride(ctx context.Context, chatUserID string, cmd command.CreateOverride, replier Replier) error {
	overrideChatUser, err := d.overrideSubject(ctx, chatUserID, cmd.User, replier)
	if err != nil || overrideChatUser == nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, overrideChatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	start, okStart := parseOverrideDate(cmd.Start)
	end, okEnd := parseOverrideDate(cmd.End)
	if !okStart || !okEnd {
		return replier.Reply(ctx, "Please use an ISO 8601 compatible date!")
	}

	schedules, err := d.schedulesMatching(ctx, cmd.ScheduleName, replier)
	if err != nil || schedules == nil {
		return err
	}

	for _, schedule := range schedules {
		override, err := d.api.CreateOverride(ctx, schedule.ID, start, end, user.ID)
		if err != nil {
			d.logger.Error("creating override failed", "schedule_id", schedule.ID, "error", err)
			return replier.Reply(ctx, "That didn't work. Check the logs for an error!")
		}
		if override == nil {
			return replier.Reply(ctx, "That didn't work. Check the logs for an error!")
		}
		if err := replier.Reply(ctx, fmt.Sprintf(
			"Override setup! %s has the pager from %s until %s",
			override.User.Summary,
			override.Start.Format(time.RFC3339),
			override.End.Format(time.RFC3339),
		)); err != nil {
			return err
		}
	}
	return nil
}

// overrideSubject picks who the override is for: the named chat user, or the
// caller when no name was given.
func (d *Dispatcher) overrideSubject(ctx context.Context, chatUserID, userName string, replier Replier) (*entity.ChatUser, error) {
	if userName == "" {
		return d.chatUser(ctx, chatUserID)
	}
	chatUser, err := d.chat.UserByName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("looking up chat user %q: %w", userName, err)
	}
	if chatUser == nil {
		return nil, replier.Reply(ctx, "Sorry, I don't seem to know who that is. Are you sure they are in chat?")
	}
	return chatUser, nil
}

func (d *Dispatcher) deleteOverride(ctx context.Context, cmd command.DeleteOverride, replier Replier) error {
	schedules, err := d.schedulesMatching(ctx, cmd.ScheduleName, replier)
	if err != nil || schedules == nil {
		return err
	}

	for _, schedule := range schedules {
		deleted, err := d.api.DeleteOverride(ctx, schedule.ID, cmd.OverrideID)
		if err != nil {
			return fmt.Errorf("deleting override %s: %w", cmd.OverrideID, err)
		}
		if deleted {
			return replier.Reply(ctx, ":boom:")
		}
	}
	return replier.Reply(ctx, "Something went weird.")
}

// takePager hands the caller the pager for a number of minutes by writing an
// override starting now, and names the responder being relieved.
func (d *Dispatcher) takePager(ctx context.Context, chatUserID string, cmd command.TakePager, replier Replier) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	schedules, err := d.schedulesMatching(ctx, cmd.ScheduleName, replier)
	if err != nil || schedules == nil {
		return err
	}

	start := time.Now()
	end := start.Add(time.Duration(cmd.Minutes) * time.Minute)

	for _, schedule := range schedules {
		relieved, err := d.currentOnCall(ctx, schedule.ID)
		if err != nil {
			return err
		}

		override, err := d.api.CreateOverride(ctx, schedule.ID, start, end, user.ID)
		if err != nil {
			return fmt.Errorf("creating override on schedule %s: %w", schedule.ID, err)
		}
		if override == nil {
			continue
		}

		relievedName := "no one"
		if relieved != nil {
			relievedName = relieved.Name
		}
		if err := replier.Reply(ctx, fmt.Sprintf(
			"Rejoice, %s! %s has the pager on %s until %s",
			relievedName,
			override.User.Summary,
			schedule.Name,
			override.End.Format(time.RFC3339),
		)); err != nil {
			return err
		}
	}
	return nil
}
