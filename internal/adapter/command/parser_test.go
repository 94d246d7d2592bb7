package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{name: "help bare", text: "pager", want: Help{}},
		{name: "help me", text: "pager me", want: Help{}},
		{name: "remember email", text: "pager me as alice@example.com", want: RememberEmail{Email: "alice@example.com"}},
		{name: "remember without me", text: "pager as alice@example.com", want: RememberEmail{Email: "alice@example.com"}},
		{name: "forget", text: "pager forget me", want: ForgetEmail{}},
		{name: "show incident", text: "pager incident P1ABC23", want: ShowIncident{ID: "P1ABC23"}},
		{name: "show incident by number", text: "pager incident 1234", want: ShowIncident{ID: "1234"}},
		{name: "list incidents", text: "pager incidents", want: ListIncidents{}},
		{name: "list incidents sup", text: "pager sup", want: ListIncidents{}},
		{name: "list incidents problems", text: "major problems", want: ListIncidents{}},
		{name: "trigger user", text: "pager trigger alice everything is on fire", want: Trigger{Target: "alice", Description: "everything is on fire"}},
		{name: "trigger quoted target", text: `pager trigger "ops team" disk full`, want: Trigger{Target: "ops team", Description: "disk full"}},
		{name: "trigger smart quotes", text: "pager trigger “ops team” disk full", want: Trigger{Target: "ops team", Description: "disk full"}},
		{name: "page alias", text: "pager page alice help", want: Trigger{Target: "alice", Description: "help"}},
		{name: "trigger bare", text: "pager trigger", want: Trigger{}},
		{name: "ack numbers", text: "pager ack 12, 34 56", want: Ack{Numbers: []int{12, 34, 56}}},
		{name: "ack mine", text: "pager ack", want: Ack{}},
		{name: "ack all", text: "pager ack!", want: Ack{Force: true}},
		{name: "acknowledge long form", text: "pager acknowledge 7", want: Ack{Numbers: []int{7}}},
		{name: "resolve numbers", text: "pager resolve 12,34,56", want: Resolve{Numbers: []int{12, 34, 56}}},
		{name: "resolve mine", text: "pager resolve", want: Resolve{}},
		{name: "resolve all", text: "pager resolve!", want: Resolve{Force: true}},
		{name: "resolve short form", text: "pager res 9", want: Resolve{Numbers: []int{9}}},
		{name: "list notes", text: "pager notes P1ABC23", want: ListNotes{IncidentID: "P1ABC23"}},
		{name: "add note", text: "pager note P1ABC23 checked the logs", want: AddNote{IncidentID: "P1ABC23", Content: "checked the logs"}},
		{name: "list schedules", text: "pager schedules", want: ListSchedules{}},
		{name: "search schedules quoted", text: `pager schedules "foo bar"`, want: ListSchedules{Query: "foo bar"}},
		{name: "search schedules unquoted", text: "pager schedules foo bar", want: ListSchedules{Query: "foo bar"}},
		{name: "show schedule", text: "pager schedule ops", want: ShowSchedule{Name: "ops", Days: 30}},
		{name: "show schedule quoted", text: `pager schedule "ops primary"`, want: ShowSchedule{Name: "ops primary", Days: 30}},
		{name: "show schedule with tz", text: "pager schedule ops EST", want: ShowSchedule{Name: "ops", Timezone: "EST", Days: 30}},
		{name: "show schedule with days", text: "pager schedule ops 14", want: ShowSchedule{Name: "ops", Days: 14}},
		{name: "show schedule tz and days", text: "pager schedule ops EST 14", want: ShowSchedule{Name: "ops", Timezone: "EST", Days: 14}},
		{name: "list overrides", text: "pager overrides ops", want: ListOverrides{Name: "ops", Days: 30}},
		{name: "list overrides with tz", text: "pager overrides ops UTC", want: ListOverrides{Name: "ops", Timezone: "UTC", Days: 30}},
		{name: "my schedule", text: "pager my schedule", want: MySchedule{Days: 30}},
		{name: "my schedule with days", text: "pager my schedule 7", want: MySchedule{Days: 7}},
		{name: "my schedule tz and days", text: "pager my schedule EST 7", want: MySchedule{Timezone: "EST", Days: 7}},
		{
			name: "create override",
			text: "pager override ops 2024-03-01T09:00 - 2024-03-01T17:00 alice",
			want: CreateOverride{ScheduleName: "ops", Start: "2024-03-01T09:00", End: "2024-03-01T17:00", User: "alice"},
		},
		{
			name: "create override quoted schedule",
			text: `pager override "ops primary" 2024-03-01 - 2024-03-02`,
			want: CreateOverride{ScheduleName: "ops primary", Start: "2024-03-01", End: "2024-03-02"},
		},
		{name: "delete override", text: "pager overrides ops delete Q3XYZ", want: DeleteOverride{ScheduleName: "ops", OverrideID: "Q3XYZ"}},
		{name: "delete override singular", text: "pager override ops delete Q3XYZ", want: DeleteOverride{ScheduleName: "ops", OverrideID: "Q3XYZ"}},
		{name: "take pager", text: "pager ops 60", want: TakePager{ScheduleName: "ops", Minutes: 60}},
		{name: "take pager quoted", text: `pager "ops primary" 90`, want: TakePager{ScheduleName: "ops primary", Minutes: 90}},
		{name: "am i on call", text: "am i on call", want: AmIOnCall{}},
		{name: "am i on call question", text: "am I on call?", want: AmIOnCall{}},
		{name: "whos on call", text: "who's on call", want: WhosOnCall{}},
		{name: "whos on call for schedule", text: "who's on call for ops?", want: WhosOnCall{ScheduleName: "ops"}},
		{name: "who is on call schedule", text: "who is on call ops", want: WhosOnCall{ScheduleName: "ops"}},
		{name: "services", text: "pager services", want: ListServices{}},
		{name: "maintenance", text: "pager maintenance 60 PSVC1 PSVC2", want: Maintenance{Minutes: 60, ServiceIDs: []string{"PSVC1", "PSVC2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			require.True(t, ok, "expected %q to parse", tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"deploy the thing",
		"pager ack banana",
		"pager schedule ops 60", // day count, not a take-pager
	} {
		t.Run(text, func(t *testing.T) {
			cmd, ok := Parse(text)
			if text == "pager schedule ops 60" {
				// sanity check: the schedule grammar wins over take-pager
				require.True(t, ok)
				assert.Equal(t, ShowSchedule{Name: "ops", Days: 60}, cmd)
				return
			}
			assert.False(t, ok)
			assert.Nil(t, cmd)
		})
	}
}

func TestParseIncidentNumbers(t *testing.T) {
	got, err := ParseIncidentNumbers("12, 34 56")
	require.NoError(t, err)
	assert.Equal(t, []int{12, 34, 56}, got)

	_, err = ParseIncidentNumbers("12 banana")
	assert.Error(t, err)
}
