package pager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
	"github.com/oncallhq/pagerbot/internal/adapter/presenter"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// onCallProbeConcurrency bounds the per-schedule API fan-out.
const onCallProbeConcurrency = 8

func (d *Dispatcher) listSchedules(ctx context.Context, query string, replier Replier) error {
	schedules, err := d.api.ListSchedules(ctx, query)
	if err != nil {
		return fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) == 0 {
		return replier.Reply(ctx, "No schedules found!")
	}
	return replier.Reply(ctx, d.formatter.Schedules(schedules))
}

// schedulesMatching resolves a schedule name query, telling the user when
// nothing matched.
func (d *Dispatcher) schedulesMatching(ctx context.Context, name string, replier Replier) ([]entity.Schedule, error) {
	schedules, err := d.api.ListSchedules(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil, replier.Reply(ctx, fmt.Sprintf("I couldn't find any schedules matching %s", name))
	}
	return schedules, nil
}

func (d *Dispatcher) showSchedule(ctx context.Context, cmd command.ShowSchedule, replier Replier) error {
	schedules, err := d.schedulesMatching(ctx, cmd.Name, replier)
	if err != nil || schedules == nil {
		return err
	}

	since := time.Now()
	until := since.AddDate(0, 0, cmd.Days)
	for _, schedule := range schedules {
		entries, err := d.api.ListScheduleEntries(ctx, schedule.ID, since, until)
		if err != nil {
			return fmt.Errorf("listing entries for schedule %s: %w", schedule.ID, err)
		}
		buffer := d.formatter.ScheduleEntries(entries, cmd.Timezone)
		if buffer == "" {
			buffer = "None found!"
		}
		if err := replier.Reply(ctx, buffer); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) listOverrides(ctx context.Context, cmd command.ListOverrides, replier Replier) error {
	schedules, err := d.schedulesMatching(ctx, cmd.Name, replier)
	if err != nil || schedules == nil {
		return err
	}

	since := time.Now()
	until := since.AddDate(0, 0, cmd.Days)
	for _, schedule := range schedules {
		overrides, err := d.api.ListOverrides(ctx, schedule.ID, since, until)
		if err != nil {
			return fmt.Errorf("listing overrides for schedule %s: %w", schedule.ID, err)
		}
		buffer := d.formatter.ScheduleEntries(overrides, cmd.Timezone)
		if buffer == "" {
			buffer = "None found!"
		}
		if err := replier.Reply(ctx, buffer); err != nil {
			return err
		}
	}
	return nil
}

// mySchedule collects the caller's shifts across every schedule, probing them
// concurrently.
func (d *Dispatcher) mySchedule(ctx context.Context, chatUserID string, cmd command.MySchedule, replier Replier) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, true)
	if err != nil || user == nil {
		return err
	}

	schedules, err := d.api.ListSchedules(ctx, "")
	if err != nil {
		return fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) == 0 {
		return replier.Reply(ctx, "No schedules found!")
	}

	since := time.Now()
	until := since.AddDate(0, 0, cmd.Days)

	var mu sync.Mutex
	var shifts []presenter.Shift

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(onCallProbeConcurrency)
	for _, schedule := range schedules {
		g.Go(func() error {
			entries, err := d.api.ListScheduleEntries(gctx, schedule.ID, since, until)
			if err != nil {
				return fmt.Errorf("listing entries for schedule %s: %w", schedule.ID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, entry := range entries {
				if entry.User.ID == user.ID {
					shifts = append(shifts, presenter.Shift{Entry: entry, ScheduleName: schedule.Name})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	buffer := d.formatter.MyScheduleEntries(shifts, cmd.Timezone)
	if buffer == "" {
		buffer = "None found!"
	}
	return replier.Reply(ctx, buffer)
}

func (d *Dispatcher) amIOnCall(ctx context.Context, chatUserID string, replier Replier) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}
	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, false)
	if err != nil {
		return err
	}
	if user == nil {
		return replier.Reply(ctx, "Couldn't figure out the PagerDuty user connected to your account.")
	}

	schedules, err := d.api.ListSchedules(ctx, "")
	if err != nil {
		return fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) == 0 {
		return replier.Reply(ctx, "No schedules found!")
	}

	lines := make([]string, len(schedules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(onCallProbeConcurrency)
	for i, schedule := range schedules {
		g.Go(func() error {
			onCall, err := d.currentOnCall(gctx, schedule.ID)
			if err != nil {
				return err
			}
			switch {
			case onCall != nil && onCall.ID == user.ID:
				lines[i] = d.formatter.AmIOnCall(true, "", schedule)
			case onCall != nil:
				lines[i] = d.formatter.AmIOnCall(false, onCall.Name, schedule)
			default:
				lines[i] = d.formatter.AmIOnCall(false, "", schedule)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return replier.Reply(ctx, joinLines(lines))
}

// whosOnCall reports the current responder for matching schedules, or for
// every allowed schedule when no name is given.
func (d *Dispatcher) whosOnCall(ctx context.Context, scheduleName string, replier Replier) error {
	var schedules []entity.Schedule
	var err error
	if scheduleName != "" {
		schedules, err = d.api.ListSchedules(ctx, scheduleName)
	} else {
		schedules, err = d.api.ListSchedules(ctx, "")
	}
	if err != nil {
		return fmt.Errorf("listing schedules: %w", err)
	}
	if len(schedules) == 0 {
		return replier.Reply(ctx, "No schedules found!")
	}

	allowed := map[string]bool{}
	for _, id := range d.settings.AllowedSchedules() {
		allowed[id] = true
	}

	lines := make([]string, len(schedules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(onCallProbeConcurrency)
	for i, schedule := range schedules {
		if len(allowed) > 0 && !allowed[schedule.ID] {
			d.logger.Debug("schedule not in allowed list", "schedule_id", schedule.ID, "name", schedule.Name)
			continue
		}
		g.Go(func() error {
			onCall, err := d.currentOnCall(gctx, schedule.ID)
			if err != nil {
				return err
			}
			if onCall == nil {
				d.logger.Debug("no user on call for schedule", "name", schedule.Name)
				return nil
			}
			lines[i] = d.formatter.OnCall(onCall.Name, schedule)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := joinLines(lines)
	if out == "" {
		out = "No one is on call right now."
	}
	return replier.Reply(ctx, out)
}

// joinLines joins non-empty lines with newlines.
func joinLines(lines []string) string {
	out := ""
	for _, line := range lines {
		if line == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += line
	}
	return out
}
