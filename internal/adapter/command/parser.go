package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// quoted matches a double-, single-, or typographically-quoted span.
// Four capture groups, one per quote style.
const quoted = `"([^"]*)"|'([^']*)'|“([^”]*)”|‘([^’]*)’`

var (
	reForget        = regexp.MustCompile(`(?i)^pager forget me$`)
	reRemember      = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? as (.+)$`)
	reHelp          = regexp.MustCompile(`(?i)^pager(?: me)?$`)
	reShowIncident  = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? incident ([a-z0-9]+)$`)
	reListIncidents = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? (?:inc|incidents|sup|problems)$`)
	reListNotes     = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? notes (\S+)$`)
	reAddNote       = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? note ([a-z0-9]+) (.+)$`)
	reTrigger       = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? (?:trigger|page)(?:\s+(?:` + quoted + `|([.\w\-]+)))?(?:\s+(.+))?$`)
	reAckList       = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? ack(?:nowledge)?\s+(.+)$`)
	reAckAll        = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? ack(?:nowledge)?(!)?$`)
	reResolveList   = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? res(?:olve)?d?\s+(.+)$`)
	reResolveAll    = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? res(?:olve)?d?(!)?$`)
	reListSchedules = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? schedules(?:\s+(?:` + quoted + `|(.+)))?$`)
	reOverrideNew   = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? override\s+(?:` + quoted + `|([\w\-]+))\s+([\w\-:+.]+)\s+-\s+([\w\-:+.]+)(?:\s+(\S+))?$`)
	reOverrideDel   = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? overrides?\s+(?:` + quoted + `|([\w\-]+))\s+delete\s+(\S+)$`)
	reMySchedule    = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? my schedule(?:\s+(\S+))?(?:\s+(\d+))?$`)
	reSchedule      = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? (schedule|overrides)(?:\s+(?:` + quoted + `|([\w\-]+)))?(?:\s+(\S+))?(?:\s+(\d+))?$`)
	reAmIOnCall     = regexp.MustCompile(`(?i)^am i on[- ]?call\??$`)
	reWhosOnCall    = regexp.MustCompile(`(?i)^who(?:'s|’s|s| is|se)? on[- ]?call\??(?:\s+(?:for\s+)?(?:` + quoted + `|(.*?)))?\??$`)
	reServices      = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? services$`)
	reMaintenance   = regexp.MustCompile(`(?i)^(?:pager|major)(?: me)? maintenance (\d+) (.+)$`)
	reTakePager     = regexp.MustCompile(`(?i)^pager(?: me)? (.+) (\d+)$`)
)

// takePagerReserved blocks the catch-all "pager <schedule> <minutes>" grammar
// from swallowing other command families.
var takePagerReserved = map[string]bool{
	"schedule": true, "schedules": true, "override": true, "overrides": true,
	"my": true, "incident": true, "incidents": true, "inc": true, "sup": true,
	"problems": true, "note": true, "notes": true, "trigger": true, "page": true,
	"ack": true, "acknowledge": true, "res": true, "resolve": true,
	"resolved": true, "services": true, "maintenance": true, "as": true,
	"forget": true, "me": true,
}

// Parse maps chat text to exactly one command variant. The boolean is false
// when no grammar matches.
func Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)

	if reForget.MatchString(text) {
		return ForgetEmail{}, true
	}
	if m := reRemember.FindStringSubmatch(text); m != nil {
		return RememberEmail{Email: strings.TrimSpace(m[1])}, true
	}
	if reHelp.MatchString(text) {
		return Help{}, true
	}
	if m := reShowIncident.FindStringSubmatch(text); m != nil {
		return ShowIncident{ID: m[1]}, true
	}
	if reListIncidents.MatchString(text) {
		return ListIncidents{}, true
	}
	if m := reListNotes.FindStringSubmatch(text); m != nil {
		return ListNotes{IncidentID: m[1]}, true
	}
	if m := reAddNote.FindStringSubmatch(text); m != nil {
		return AddNote{IncidentID: m[1], Content: m[2]}, true
	}
	if m := reOverrideNew.FindStringSubmatch(text); m != nil {
		return CreateOverride{
			ScheduleName: firstOf(m[1:6]),
			Start:        m[6],
			End:          m[7],
			User:         m[8],
		}, true
	}
	if m := reOverrideDel.FindStringSubmatch(text); m != nil {
		return DeleteOverride{ScheduleName: firstOf(m[1:6]), OverrideID: m[6]}, true
	}
	if m := reTrigger.FindStringSubmatch(text); m != nil {
		return Trigger{Target: firstOf(m[1:6]), Description: strings.TrimSpace(m[6])}, true
	}
	if m := reAckList.FindStringSubmatch(text); m != nil {
		numbers, err := ParseIncidentNumbers(m[1])
		if err != nil {
			return nil, false
		}
		return Ack{Numbers: numbers}, true
	}
	if m := reAckAll.FindStringSubmatch(text); m != nil {
		return Ack{Force: m[1] != ""}, true
	}
	if m := reResolveList.FindStringSubmatch(text); m != nil {
		numbers, err := ParseIncidentNumbers(m[1])
		if err != nil {
			return nil, false
		}
		return Resolve{Numbers: numbers}, true
	}
	if m := reResolveAll.FindStringSubmatch(text); m != nil {
		return Resolve{Force: m[1] != ""}, true
	}
	if m := reListSchedules.FindStringSubmatch(text); m != nil {
		return ListSchedules{Query: strings.TrimSpace(firstOf(m[1:6]))}, true
	}
	if m := reMySchedule.FindStringSubmatch(text); m != nil {
		tz, days := displayWindow(m[1], m[2])
		return MySchedule{Timezone: tz, Days: days}, true
	}
	if m := reSchedule.FindStringSubmatch(text); m != nil {
		name := firstOf(m[2:7])
		tz, days := displayWindow(m[7], m[8])
		if strings.EqualFold(m[1], "overrides") {
			return ListOverrides{Name: name, Timezone: tz, Days: days}, true
		}
		return ShowSchedule{Name: name, Timezone: tz, Days: days}, true
	}
	if reAmIOnCall.MatchString(text) {
		return AmIOnCall{}, true
	}
	if reServices.MatchString(text) {
		return ListServices{}, true
	}
	if m := reMaintenance.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return Maintenance{Minutes: minutes, ServiceIDs: strings.Fields(m[2])}, true
	}
	if m := reWhosOnCall.FindStringSubmatch(text); m != nil {
		return WhosOnCall{ScheduleName: strings.TrimSpace(firstOf(m[1:6]))}, true
	}
	if m := reTakePager.FindStringSubmatch(text); m != nil {
		name := strings.Trim(m[1], `"'“”‘’`)
		if name != "" && !takePagerReserved[strings.ToLower(strings.Fields(name)[0])] {
			minutes, _ := strconv.Atoi(m[2])
			return TakePager{ScheduleName: name, Minutes: minutes}, true
		}
	}

	return nil, false
}

// ParseIncidentNumbers splits a comma/space separated list of incident
// numbers, tolerating mixed separators.
func ParseIncidentNumbers(s string) ([]int, error) {
	parts := regexp.MustCompile(`[ ,]+`).Split(strings.TrimSpace(s), -1)
	numbers := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid incident number %q", p)
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("no incident numbers in %q", s)
	}
	return numbers, nil
}

// firstOf returns the first non-empty capture among quote-style alternates.
func firstOf(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

// displayWindow classifies up to two trailing tokens into an optional
// timezone and day count. A bare number is a day count; anything else is a
// timezone name. Days default to 30.
func displayWindow(tok1, tok2 string) (tz string, days int) {
	days = 30
	for _, tok := range []string{tok1, tok2} {
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			days = n
		} else {
			tz = tok
		}
	}
	return tz, days
}
