package pager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
)

func (d *Dispatcher) listServices(ctx context.Context, replier Replier) error {
	services, err := d.api.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("listing services: %w", err)
	}
	if len(services) == 0 {
		return replier.Reply(ctx, "No services found!")
	}
	return replier.Reply(ctx, d.formatter.Services(services))
}

// maintenance opens a maintenance window covering the named services for the
// requested number of minutes, starting now.
func (d *Dispatcher) maintenance(ctx context.Context, cmd command.Maintenance, replier Replier) error {
	if err := replier.Reply(ctx, fmt.Sprintf(
		"Opening maintenance window for: %s", strings.Join(cmd.ServiceIDs, " "))); err != nil {
		return err
	}

	start := time.Now()
	end := start.Add(time.Duration(cmd.Minutes) * time.Minute)

	id, endTime, err := d.api.CreateMaintenanceWindow(ctx, start, end, cmd.ServiceIDs)
	if err != nil {
		d.logger.Error("creating maintenance window failed", "services", cmd.ServiceIDs, "error", err)
		return replier.Reply(ctx, "Sorry, I couldn't do it :(")
	}
	if id == "" {
		return replier.Reply(ctx, "Sorry, I couldn't do it :(")
	}
	return replier.Reply(ctx, fmt.Sprintf("Maintenance window created! ID: %s Ends: %s", id, endTime))
}
