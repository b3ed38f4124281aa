package room

import (
	"context"
	"encoding/json"

	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

type RelaySignalParams struct {
	SenderId string
	TargetId string
	// Payload is never parsed: offers, answers and candidates are opaque to
	// the relay.
	Payload json.RawMessage
}

// Signal is the annotated envelope delivered to the target: the untouched
// payload plus the sender's connection id, so the target knows whom to
// answer.
type Signal struct {
	Payload json.RawMessage `json:"payload"`
	Sender  string          `json:"sender"`
}

type RelaySignalResponse struct {
	TargetConn *wsrouter.Conn
	Signal     Signal
}

// RelaySignal resolves the target connection for a negotiation payload. No
// room-membership check happens here: any connection may address any other
// connection id it has learned, matching the minimal-trust model of the rest
// of the service.
func (s *service) RelaySignal(ctx context.Context, params *RelaySignalParams) (RelaySignalResponse, error) {
	conn, err := s.connRepo.GetConn(params.TargetId)
	if err != nil {
		return RelaySignalResponse{}, ErrTargetNotFound
	}

	return RelaySignalResponse{
		TargetConn: conn,
		Signal: Signal{
			Payload: params.Payload,
			Sender:  params.SenderId,
		},
	}, nil
}
