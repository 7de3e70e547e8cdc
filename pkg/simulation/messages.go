package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/dla"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The world actor speaks in protobuf well-known types:
//
//	*wrapperspb.UInt32Value  render one frame after running that many ticks
//	*wrapperspb.BoolValue    pause (true) or resume (false) the ticks
//	*emptypb.Empty           restart from a single seed particle
//	*structpb.Struct         replace the simulation tunables

// NewFrame asks the world for one frame after running ticks simulation steps.
func NewFrame(ticks int) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(uint32(max(ticks, 0)))
}

// NewPause pauses or resumes the simulation.
func NewPause(paused bool) *wrapperspb.BoolValue {
	return wrapperspb.Bool(paused)
}

// NewRestart discards the aggregate.
func NewRestart() *emptypb.Empty {
	return &emptypb.Empty{}
}

// NewTunables encodes a simulation config as a struct message, using the
// same keys as the config file.
func NewTunables(cfg dla.Config) (*structpb.Struct, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tunables: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to encode tunables: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tunables: %w", err)
	}
	return s, nil
}

// decodeTunables applies the keys present in msg over base.
func decodeTunables(msg *structpb.Struct, base dla.Config) (dla.Config, error) {
	b, err := json.Marshal(msg.AsMap())
	if err != nil {
		return base, fmt.Errorf("failed to decode tunables: %w", err)
	}
	cfg := base
	if err := json.Unmarshal(b, &cfg); err != nil {
		return base, fmt.Errorf("failed to decode tunables: %w", err)
	}
	return cfg, nil
}
