// Package command turns free-form chat text into typed commands.
//
// Each command family is one variant type; a single Parse call maps raw text
// to exactly one variant or reports no match. Grammars tolerate double,
// single, and typographic quotes around multi-word targets.
package command

// Command is implemented by every parsed command variant.
type Command interface {
	isCommand()
}

// Help asks for the speaker's PagerDuty identity and the command listing.
type Help struct{}

// RememberEmail stores the speaker's PagerDuty email.
type RememberEmail struct {
	Email string
}

// ForgetEmail clears the speaker's stored PagerDuty email.
type ForgetEmail struct{}

// ShowIncident displays one incident by ID or number.
type ShowIncident struct {
	ID string
}

// ListIncidents displays all open (triggered or acknowledged) incidents.
type ListIncidents struct{}

// Trigger pages a user, escalation policy, or schedule's on-call.
// An empty Target pages the configured default schedule.
type Trigger struct {
	Target      string
	Description string
}

// Ack acknowledges incidents. Empty Numbers means "mine"; Force widens the
// implicit form to all incidents regardless of assignment.
type Ack struct {
	Numbers []int
	Force   bool
}

// Resolve resolves incidents, with the same implicit/forced semantics as Ack.
type Resolve struct {
	Numbers []int
	Force   bool
}

// ListNotes shows the notes on an incident.
type ListNotes struct {
	IncidentID string
}

// AddNote attaches a note to an incident.
type AddNote struct {
	IncidentID string
	Content    string
}

// ListSchedules lists schedules, optionally filtered by a search term.
type ListSchedules struct {
	Query string
}

// ShowSchedule renders a schedule's upcoming shifts.
type ShowSchedule struct {
	Name     string
	Timezone string
	Days     int
}

// ListOverrides shows a schedule's upcoming overrides.
type ListOverrides struct {
	Name     string
	Timezone string
	Days     int
}

// MySchedule renders the speaker's shifts across all schedules.
type MySchedule struct {
	Timezone string
	Days     int
}

// CreateOverride substitutes a user onto a schedule between two instants.
// Empty User defaults to the speaker.
type CreateOverride struct {
	ScheduleName string
	Start        string
	End          string
	User         string
}

// DeleteOverride removes an override by ID.
type DeleteOverride struct {
	ScheduleName string
	OverrideID   string
}

// TakePager overrides a schedule with the speaker for a number of minutes.
type TakePager struct {
	ScheduleName string
	Minutes      int
}

// AmIOnCall asks whether the speaker is currently on call anywhere.
type AmIOnCall struct{}

// WhosOnCall lists current on-call users, optionally for matching schedules.
type WhosOnCall struct {
	ScheduleName string
}

// ListServices lists PagerDuty services.
type ListServices struct{}

// Maintenance opens a maintenance window over the given services.
type Maintenance struct {
	Minutes    int
	ServiceIDs []string
}

func (Help) isCommand()           {}
func (RememberEmail) isCommand()  {}
func (ForgetEmail) isCommand()    {}
func (ShowIncident) isCommand()   {}
func (ListIncidents) isCommand()  {}
func (Trigger) isCommand()        {}
func (Ack) isCommand()            {}
func (Resolve) isCommand()        {}
func (ListNotes) isCommand()      {}
func (AddNote) isCommand()        {}
func (ListSchedules) isCommand()  {}
func (ShowSchedule) isCommand()   {}
func (ListOverrides) isCommand()  {}
func (MySchedule) isCommand()     {}
func (CreateOverride) isCommand() {}
func (DeleteOverride) isCommand() {}
func (TakePager) isCommand()      {}
func (AmIOnCall) isCommand()      {}
func (WhosOnCall) isCommand()     {}
func (ListServices) isCommand()   {}
func (Maintenance) isCommand()    {}

// Family names a command's family for logs and counters.
func Family(c Command) string {
	switch c.(type) {
	case Help:
		return "help"
	case RememberEmail, ForgetEmail:
		return "identity"
	case ShowIncident, ListIncidents:
		return "incidents"
	case Trigger:
		return "trigger"
	case Ack:
		return "ack"
	case Resolve:
		return "resolve"
	case ListNotes, AddNote:
		return "notes"
	case ListSchedules, ShowSchedule, MySchedule:
		return "schedules"
	case ListOverrides, CreateOverride, DeleteOverride, TakePager:
		return "overrides"
	case AmIOnCall, WhosOnCall:
		return "oncall"
	case ListServices:
		return "services"
	case Maintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}
