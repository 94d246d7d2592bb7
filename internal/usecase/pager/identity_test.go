package pager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallhq/pagerbot/internal/domain/entity"
)

func TestIdentityResolveEmailPriority(t *testing.T) {
	api := &fakeAPI{usersByEmail: map[string][]entity.User{
		"remembered@example.com": {{ID: "P1", Name: "remembered"}},
		"profile@example.com":    {{ID: "P2", Name: "profile"}},
		"test@example.com":       {{ID: "P3", Name: "fallback"}},
	}}
	store := newFakeUserStore()
	resolver := NewIdentityResolver(api, store, &fakeSettings{testEmail: "test@example.com"}, nopLogger{})

	ctx := context.Background()
	chatUser := &entity.ChatUser{ID: "U1", Email: "profile@example.com"}

	// Remembered email wins over the chat profile.
	require.NoError(t, store.Set(ctx, "U1", "remembered@example.com"))
	user, err := resolver.Resolve(ctx, chatUser, chatUser.ID, &fakeReplier{}, true)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "P1", user.ID)

	// Without a remembered email the profile email is used.
	require.NoError(t, store.Delete(ctx, "U1"))
	user, err = resolver.Resolve(ctx, chatUser, chatUser.ID, &fakeReplier{}, true)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "P2", user.ID)

	// With no emails at all, the configured test email is the last resort.
	user, err = resolver.Resolve(ctx, &entity.ChatUser{ID: "U2"}, "U2", &fakeReplier{}, true)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "P3", user.ID)
}

func TestIdentityResolveNotRequiredIsSilent(t *testing.T) {
	api := &fakeAPI{usersByEmail: map[string][]entity.User{}}
	resolver := NewIdentityResolver(api, newFakeUserStore(), &fakeSettings{}, nopLogger{})

	replier := &fakeReplier{}
	user, err := resolver.Resolve(context.Background(), &entity.ChatUser{ID: "U9"}, "U9", replier, false)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, replier.messages)
}

func TestIdentityResolveRequiredRepliesOnce(t *testing.T) {
	api := &fakeAPI{usersByEmail: map[string][]entity.User{}}
	resolver := NewIdentityResolver(api, newFakeUserStore(), &fakeSettings{}, nopLogger{})

	replier := &fakeReplier{}
	user, err := resolver.Resolve(context.Background(), &entity.ChatUser{ID: "U9"}, "U9", replier, true)
	require.NoError(t, err)
	assert.Nil(t, user)
	require.Len(t, replier.messages, 1)
	assert.Contains(t, replier.messages[0], "can't figure out your email address")
}

func TestIdentityResolveAddressesTargetByName(t *testing.T) {
	tests := []struct {
		name         string
		chatUser     *entity.ChatUser
		speakerID    string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "speaker resolving themselves",
			chatUser:     &entity.ChatUser{ID: "U1", Name: "alice"},
			speakerID:    "U1",
			wantContains: []string{"your email address", "Can you tell me"},
		},
		{
			name:         "speaker resolving someone else",
			chatUser:     &entity.ChatUser{ID: "U2", Name: "bob"},
			speakerID:    "U1",
			wantContains: []string{"bob's email address", "Can bob tell me"},
			wantAbsent:   []string{"your email address", "Can you tell me"},
		},
		{
			name:         "nameless third party falls back to the chat ID",
			chatUser:     &entity.ChatUser{ID: "U2"},
			speakerID:    "U1",
			wantContains: []string{"U2's email address", "Can U2 tell me"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{usersByEmail: map[string][]entity.User{}}
			resolver := NewIdentityResolver(api, newFakeUserStore(), &fakeSettings{}, nopLogger{})

			replier := &fakeReplier{}
			user, err := resolver.Resolve(context.Background(), tt.chatUser, tt.speakerID, replier, true)
			require.NoError(t, err)
			assert.Nil(t, user)
			require.Len(t, replier.messages, 1)
			for _, want := range tt.wantContains {
				assert.Contains(t, replier.messages[0], want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, replier.messages[0], absent)
			}
		})
	}
}

func TestIdentityResolveAmbiguousEmail(t *testing.T) {
	api := &fakeAPI{usersByEmail: map[string][]entity.User{
		"shared@example.com": {{ID: "P1"}, {ID: "P2"}},
	}}
	resolver := NewIdentityResolver(api, newFakeUserStore(), &fakeSettings{}, nopLogger{})

	replier := &fakeReplier{}
	user, err := resolver.Resolve(context.Background(),
		&entity.ChatUser{ID: "U1", Email: "shared@example.com"}, "U1", replier, true)
	require.NoError(t, err)
	assert.Nil(t, user)
	require.Len(t, replier.messages, 1)
	assert.Contains(t, replier.messages[0], "but got 2")
}
