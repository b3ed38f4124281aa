package controller

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oscoding1/watchtogether/internal/service/room"
)

func TestErrorReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid request", room.ErrInvalidRequest, "invalid_request"},
		{"room not found", room.ErrRoomNotFound, "room_not_found"},
		{"name taken", room.ErrNameTaken, "name_taken"},
		{"room full", room.ErrRoomFull, "room_full"},
		{"permission denied stays silent", room.ErrPermissionDenied, ""},
		{"unknown target stays silent", room.ErrTargetNotFound, ""},
		{"member not found stays silent", room.ErrMemberNotFound, ""},
		{"wrapped error keeps its reason", fmt.Errorf("failed to seek: %w", room.ErrInvalidRequest), "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorReason(tt.err))
		})
	}
}
