package app

import (
	"fmt"

	"github.com/example/ordinal/internal/core/bus"
	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/secondary"
)

// StaticRouter implements secondary.Router with the fixed level table:
// subagent calls go to the answer engine, orchestrator calls to the human
// relay. The router holds no state beyond the two capabilities.
type StaticRouter struct {
	engine secondary.Responder
	relay  secondary.Responder
}

// NewStaticRouter creates a router over the two responder capabilities.
func NewStaticRouter(engine, relay secondary.Responder) *StaticRouter {
	return &StaticRouter{engine: engine, relay: relay}
}

// Route returns the responder and the tag recorded on its responses.
func (r *StaticRouter) Route(from models.Level) (secondary.Responder, models.Responder, error) {
	class, err := bus.Route(from)
	if err != nil {
		return nil, "", err
	}

	switch class {
	case bus.ClassAnswerEngine:
		return r.engine, class.Tag(), nil
	case bus.ClassHumanRelay:
		return r.relay, class.Tag(), nil
	default:
		return nil, "", fmt.Errorf("no responder wired for class %d", class)
	}
}

// Ensure StaticRouter implements the interface
var _ secondary.Router = (*StaticRouter)(nil)
