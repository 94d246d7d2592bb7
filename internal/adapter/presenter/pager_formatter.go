package presenter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

// PagerFormatter renders incidents, schedules, and webhook updates as chat
// text. Slash commands reply with plain lines rather than Block Kit so the
// output survives copy-paste into runbooks.
type PagerFormatter struct {
	commandPrefix string
}

// NewPagerFormatter creates a formatter whose call-to-action hints use the
// given slash command prefix, e.g. "/pager".
func NewPagerFormatter(commandPrefix string) *PagerFormatter {
	if commandPrefix == "" {
		commandPrefix = "/pager"
	}
	return &PagerFormatter{commandPrefix: commandPrefix}
}

// Incident renders a single incident line.
func (f *PagerFormatter) Incident(inc entity.Incident) string {
	assignedTo := ""
	if assignee := inc.Assignee(); assignee != "" {
		assignedTo = fmt.Sprintf("- assigned to %s", assignee)
	}
	return fmt.Sprintf("%d: %s %s %s\n", inc.Number, inc.CreatedAt.Format(time.RFC3339), inc.Title, assignedTo)
}

// IncidentList renders open incidents grouped into triggered and acknowledged
// sections.
func (f *PagerFormatter) IncidentList(incidents []entity.Incident) string {
	if len(incidents) == 0 {
		return "No open incidents"
	}
	var b strings.Builder
	b.WriteString("Triggered:\n----------\n")
	for _, inc := range incidents {
		if inc.Status == entity.StatusTriggered {
			b.WriteString(f.Incident(inc))
		}
	}
	b.WriteString("\nAcknowledged:\n-------------\n")
	for _, inc := range incidents {
		if inc.Status == entity.StatusAcknowledged {
			b.WriteString(f.Incident(inc))
		}
	}
	return b.String()
}

// Notes renders incident notes, one per line.
func (f *PagerFormatter) Notes(notes []entity.Note) string {
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "%s %s: %s\n", n.CreatedAt.Format(time.RFC3339), n.User.Summary, n.Content)
	}
	return b.String()
}

// Schedules renders a schedule listing.
func (f *PagerFormatter) Schedules(schedules []entity.Schedule) string {
	var b strings.Builder
	for _, s := range schedules {
		fmt.Fprintf(&b, "* %s - %s\n", s.Name, s.HTMLURL)
	}
	return b.String()
}

// ScheduleEntries renders rendered schedule entries in the given timezone,
// sorted by start time. Entries carrying an ID (overrides) include it so the
// ID can be fed back to the delete command.
func (f *PagerFormatter) ScheduleEntries(entries []entity.ScheduleEntry, timezone string) string {
	loc := resolveLocation(timezone)
	entity.SortEntriesByStart(entries)
	var b strings.Builder
	for _, e := range entries {
		start := e.Start.In(loc).Format(time.RFC3339)
		end := e.End.In(loc).Format(time.RFC3339)
		if e.ID != "" {
			fmt.Fprintf(&b, "* (%s) %s - %s %s\n", e.ID, start, end, e.User.Summary)
		} else {
			fmt.Fprintf(&b, "* %s - %s %s\n", start, end, e.User.Summary)
		}
	}
	return b.String()
}

// Shift is a schedule entry annotated with the schedule it belongs to.
type Shift struct {
	Entry        entity.ScheduleEntry
	ScheduleName string
}

// MyScheduleEntries renders a user's own shifts annotated with the schedule
// each shift belongs to.
func (f *PagerFormatter) MyScheduleEntries(shifts []Shift, timezone string) string {
	loc := resolveLocation(timezone)
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Entry.Start.Before(shifts[j].Entry.Start) })
	var b strings.Builder
	for _, s := range shifts {
		start := s.Entry.Start.In(loc).Format(time.RFC3339)
		end := s.Entry.End.In(loc).Format(time.RFC3339)
		fmt.Fprintf(&b, "* %s - %s %s (%s)\n", start, end, s.Entry.User.Summary, s.ScheduleName)
	}
	return b.String()
}

// Services renders the service listing.
func (f *PagerFormatter) Services(services []entity.Service) string {
	var b strings.Builder
	for _, s := range services {
		fmt.Fprintf(&b, "* %s: %s (%s) - %s\n", s.ID, s.Name, s.Status, s.HTMLURL)
	}
	return b.String()
}

// OnCall renders one "who is on call" line.
func (f *PagerFormatter) OnCall(userName string, schedule entity.Schedule) string {
	return fmt.Sprintf("* %s is on call for %s - %s", userName, schedule.Name, schedule.HTMLURL)
}

// AmIOnCall renders the per-schedule yes/no line for the asking user.
func (f *PagerFormatter) AmIOnCall(onCall bool, onCallUserName string, schedule entity.Schedule) string {
	if onCall {
		return fmt.Sprintf("* Yes, you are on call for %s - %s", schedule.Name, schedule.HTMLURL)
	}
	if onCallUserName != "" {
		return fmt.Sprintf("* No, you are NOT on call for %s (but %s is) - %s", schedule.Name, onCallUserName, schedule.HTMLURL)
	}
	return fmt.Sprintf("* No, you are NOT on call for %s - %s", schedule.Name, schedule.HTMLURL)
}

// UpdateSummary renders a webhook payload as a single chat message. Unknown
// message types are skipped; incident subtypes each get their own
// call-to-action text.
func (f *PagerFormatter) UpdateSummary(payload entity.WebhookPayload) string {
	lines := []string{}
	for _, msg := range payload.Messages {
		if !msg.IsIncident() {
			continue
		}
		lines = append(lines, f.incidentUpdate(msg))
	}
	if len(lines) == 0 {
		return ""
	}
	header := fmt.Sprintf("You have %d PagerDuty update(s): \n", len(lines))
	return header + "\n" + strings.Join(lines, "\n")
}

func (f *PagerFormatter) incidentUpdate(msg entity.WebhookMessage) string {
	inc := msg.Data.Incident
	user := inc.ResponsibleEmail()
	switch msg.Type {
	case "incident.trigger":
		return fmt.Sprintf("Incident # %d :\n%s and assigned to %s\n %s\nTo acknowledge: %s ack %d\nTo resolve: %s resolve %d",
			inc.Number, inc.Status, user, inc.HTMLURL, f.commandPrefix, inc.Number, f.commandPrefix, inc.Number)
	case "incident.acknowledge":
		return fmt.Sprintf("Incident # %d :\n%s and assigned to %s\n %s\nTo resolve: %s resolve %d",
			inc.Number, inc.Status, user, inc.HTMLURL, f.commandPrefix, inc.Number)
	case "incident.resolve":
		return fmt.Sprintf("Incident # %d has been resolved by %s\n %s", inc.Number, user, inc.HTMLURL)
	case "incident.unacknowledge":
		return fmt.Sprintf("%s , unacknowledged and assigned to %s\n %s\nTo acknowledge: %s ack %d\nTo resolve: %s resolve %d",
			inc.Status, user, inc.HTMLURL, f.commandPrefix, inc.Number, f.commandPrefix, inc.Number)
	case "incident.assign":
		return fmt.Sprintf("Incident # %d :\n%s , reassigned to %s\n %s\nTo resolve: %s resolve %d",
			inc.Number, inc.Status, user, inc.HTMLURL, f.commandPrefix, inc.Number)
	case "incident.escalate":
		return fmt.Sprintf("Incident # %d :\n%s , was escalated and assigned to %s\n %s\nTo acknowledge: %s ack %d\nTo resolve: %s resolve %d",
			inc.Number, inc.Status, user, inc.HTMLURL, f.commandPrefix, inc.Number, f.commandPrefix, inc.Number)
	default:
		return fmt.Sprintf("Incident # %d :\n%s and assigned to %s\n %s",
			inc.Number, inc.Status, user, inc.HTMLURL)
	}
}

// Help renders the command reference.
func (f *PagerFormatter) Help() string {
	p := f.commandPrefix
	var b strings.Builder
	b.WriteString("Commands:\n")
	fmt.Fprintf(&b, "%s me as <email> - remember your PagerDuty email\n", p)
	fmt.Fprintf(&b, "%s forget me - forget your remembered email\n", p)
	fmt.Fprintf(&b, "%s incident <id> - show incident details\n", p)
	fmt.Fprintf(&b, "%s incidents - show open incidents (also: sup, problems)\n", p)
	fmt.Fprintf(&b, "%s trigger <user|policy|schedule> <msg> - create a new incident\n", p)
	fmt.Fprintf(&b, "%s trigger <msg> - page whoever holds the default schedule\n", p)
	fmt.Fprintf(&b, "%s ack - ack triggered incidents assigned to you\n", p)
	fmt.Fprintf(&b, "%s ack! - ack all triggered incidents\n", p)
	fmt.Fprintf(&b, "%s ack <nnn1> <nnn2> ... - ack incidents by number\n", p)
	fmt.Fprintf(&b, "%s resolve - resolve acknowledged incidents assigned to you\n", p)
	fmt.Fprintf(&b, "%s resolve! - resolve all acknowledged incidents, not just yours\n", p)
	fmt.Fprintf(&b, "%s resolve <nnn1> <nnn2> ... - resolve incidents by number\n", p)
	fmt.Fprintf(&b, "%s notes <incident> - show notes for an incident\n", p)
	fmt.Fprintf(&b, "%s note <incident> <text> - add a note to an incident\n", p)
	fmt.Fprintf(&b, "%s schedules [<search>] - list schedules\n", p)
	fmt.Fprintf(&b, "%s schedule <name> [tz] [days] - show a schedule's shifts\n", p)
	fmt.Fprintf(&b, "%s my schedule [tz] [days] - show your upcoming shifts\n", p)
	fmt.Fprintf(&b, "%s overrides <name> [tz] [days] - show schedule overrides\n", p)
	fmt.Fprintf(&b, "%s override <name> <start> - <end> [user] - create an override\n", p)
	fmt.Fprintf(&b, "%s override <name> delete <id> - delete an override\n", p)
	fmt.Fprintf(&b, "%s <name> <minutes> - take the pager for <minutes>\n", p)
	fmt.Fprintf(&b, "%s am i on call - am I currently on call?\n", p)
	fmt.Fprintf(&b, "%s who's on call [for <name>] - who is on call\n", p)
	fmt.Fprintf(&b, "%s services - list services\n", p)
	fmt.Fprintf(&b, "%s maintenance <minutes> <service_id> ... - open a maintenance window\n", p)
	return b.String()
}

// resolveLocation maps an IANA or abbreviation timezone name to a location,
// falling back to UTC when the name is unknown.
func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
