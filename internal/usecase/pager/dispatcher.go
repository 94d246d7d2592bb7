package pager

import (
	"context"
	"fmt"

	"github.com/oncallhq/pagerbot/internal/adapter/command"
	"github.com/oncallhq/pagerbot/internal/adapter/presenter"
	"github.com/oncallhq/pagerbot/internal/domain/entity"
	"github.com/oncallhq/pagerbot/internal/domain/repository"
)

// Dispatcher routes parsed chat commands to their PagerDuty workflows.
type Dispatcher struct {
	api       PagerDutyAPI
	events    EventsAPI
	chat      ChatDirectory
	identity  *IdentityResolver
	users     repository.UserEmailRepository
	formatter *presenter.PagerFormatter
	settings  Settings
	logger    Logger
}

// NewDispatcher creates a Dispatcher with its collaborators.
func NewDispatcher(
	api PagerDutyAPI,
	events EventsAPI,
	chat ChatDirectory,
	identity *IdentityResolver,
	users repository.UserEmailRepository,
	formatter *presenter.PagerFormatter,
	settings Settings,
	logger Logger,
) *Dispatcher {
	return &Dispatcher{
		api:       api,
		events:    events,
		chat:      chat,
		identity:  identity,
		users:     users,
		formatter: formatter,
		settings:  settings,
		logger:    logger,
	}
}

// Dispatch parses text from chatUserID and runs the matching workflow,
// sending all responses through replier. It returns the command family for
// accounting and an error for failures the user was not already told about.
func (d *Dispatcher) Dispatch(ctx context.Context, chatUserID, userName, text string, replier Replier) (string, error) {
	cmd, ok := command.Parse(text)
	if !ok {
		return "unknown", replier.Reply(ctx,
			"Sorry, I didn't understand that. Try `/pager` for a list of commands.")
	}

	family := command.Family(cmd)
	d.logger.Info("dispatching command", "family", family, "chat_user", chatUserID)

	var err error
	switch c := cmd.(type) {
	case command.Help:
		err = d.help(ctx, chatUserID, replier)
	case command.RememberEmail:
		err = d.rememberEmail(ctx, chatUserID, c.Email, replier)
	case command.ForgetEmail:
		err = d.forgetEmail(ctx, chatUserID, replier)
	case command.ShowIncident:
		err = d.showIncident(ctx, c.ID, replier)
	case command.ListIncidents:
		err = d.listIncidents(ctx, replier)
	case command.Trigger:
		err = d.trigger(ctx, chatUserID, userName, c, replier)
	case command.Ack:
		err = d.acknowledge(ctx, chatUserID, c, replier)
	case command.Resolve:
		err = d.resolve(ctx, chatUserID, c, replier)
	case command.ListNotes:
		err = d.listNotes(ctx, c.IncidentID, replier)
	case command.AddNote:
		err = d.addNote(ctx, chatUserID, c, replier)
	case command.ListSchedules:
		err = d.listSchedules(ctx, c.Query, replier)
	case command.ShowSchedule:
		err = d.showSchedule(ctx, c, replier)
	case command.ListOverrides:
		err = d.listOverrides(ctx, c, replier)
	case command.MySchedule:
		err = d.mySchedule(ctx, chatUserID, c, replier)
	case command.CreateOverride:
		err = d.createOverride(ctx, chatUserID, c, replier)
	case command.DeleteOverride:
		err = d.deleteOverride(ctx, c, replier)
	case command.TakePager:
		err = d.takePager(ctx, chatUserID, c, replier)
	case command.AmIOnCall:
		err = d.amIOnCall(ctx, chatUserID, replier)
	case command.WhosOnCall:
		err = d.whosOnCall(ctx, c.ScheduleName, replier)
	case command.ListServices:
		err = d.listServices(ctx, replier)
	case command.Maintenance:
		err = d.maintenance(ctx, c, replier)
	default:
		err = fmt.Errorf("unhandled command %T", cmd)
	}
	return family, err
}

// chatUser fetches the invoking chat user's profile.
func (d *Dispatcher) chatUser(ctx context.Context, chatUserID string) (*entity.ChatUser, error) {
	user, err := d.chat.UserByID(ctx, chatUserID)
	if err != nil {
		return nil, fmt.Errorf("looking up chat user %s: %w", chatUserID, err)
	}
	return user, nil
}

func (d *Dispatcher) help(ctx context.Context, chatUserID string, replier Replier) error {
	chatUser, err := d.chatUser(ctx, chatUserID)
	if err != nil {
		return err
	}

	remembered, err := d.identity.RememberedEmail(ctx, chatUserID)
	if err != nil {
		return err
	}

	emailNote := ""
	switch {
	case remembered != "":
		emailNote = fmt.Sprintf("You've told me your PagerDuty email is %s", remembered)
	case chatUser.Email != "" || chatUser.ProfileEmail != "":
		email := chatUser.Email
		if email == "" {
			email = chatUser.ProfileEmail
		}
		emailNote = fmt.Sprintf("I'm assuming your PagerDuty email is %s. Change it with `/pager me as you@yourdomain.com`", email)
	}

	user, err := d.identity.Resolve(ctx, chatUser, chatUserID, replier, false)
	if err != nil {
		return err
	}
	if user != nil {
		if err := replier.Reply(ctx, fmt.Sprintf("I found your PagerDuty user %s, %s", user.HTMLURL, emailNote)); err != nil {
			return err
		}
	} else {
		if err := replier.Reply(ctx, fmt.Sprintf("I couldn't find your user :( %s", emailNote)); err != nil {
			return err
		}
	}

	return replier.Reply(ctx, d.formatter.Help())
}

func (d *Dispatcher) rememberEmail(ctx context.Context, chatUserID, email string, replier Replier) error {
	if err := d.users.Set(ctx, chatUserID, email); err != nil {
		return fmt.Errorf("remembering email: %w", err)
	}
	return replier.Reply(ctx, fmt.Sprintf("Okay, I'll remember your PagerDuty email is %s", email))
}

func (d *Dispatcher) forgetEmail(ctx context.Context, chatUserID string, replier Replier) error {
	if err := d.users.Delete(ctx, chatUserID); err != nil {
		return fmt.Errorf("forgetting email: %w", err)
	}
	return replier.Reply(ctx, "Okay, I've forgotten your PagerDuty email")
}
