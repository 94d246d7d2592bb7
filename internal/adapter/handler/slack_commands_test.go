package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "pager"},
		{"   ", "pager"},
		{"sup", "pager sup"},
		{"trigger ops everything is on fire", "pager trigger ops everything is on fire"},
		{"ack 12 34", "pager ack 12 34"},
		{"pager me as alice@example.com", "pager me as alice@example.com"},
		{"major problems", "major problems"},
		{"am I on call", "am I on call"},
		{"who's on call", "who's on call"},
		{"me as alice@example.com", "pager me as alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}
