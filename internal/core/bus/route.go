package bus

import (
	"fmt"

	"github.com/example/ordinal/internal/models"
)

// ResponderClass identifies which mechanism answers a request.
type ResponderClass int

const (
	// ClassAnswerEngine answers subagent (level 1) calls automatically.
	ClassAnswerEngine ResponderClass = iota
	// ClassHumanRelay forwards orchestrator (level 2) calls to the oracle.
	ClassHumanRelay
)

// Tag returns the responder value recorded on responses produced by this class.
func (c ResponderClass) Tag() models.Responder {
	if c == ClassHumanRelay {
		return models.ResponderOracle
	}
	return models.ResponderOrchestrator
}

// Route selects the responder class for a request's origin level.
// The routing table is fixed: subagents are answered by the orchestrator's
// answer engine, the orchestrator is answered by the human oracle.
func Route(from models.Level) (ResponderClass, error) {
	switch from {
	case models.LevelSubagent:
		return ClassAnswerEngine, nil
	case models.LevelOrchestrator:
		return ClassHumanRelay, nil
	default:
		return 0, fmt.Errorf("unsupported from_level %d: no responder class handles it", from)
	}
}
