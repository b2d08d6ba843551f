// Package models defines the core domain types for the ordinal bus.
//
// The bus implements the ordinal computation model: participants sit at
// integer ranks (levels) and ask questions upward. Level 0 is infrastructure,
// level 1 subagents, level 2 the orchestrator, level 3 the oracle (a human).
// Only 1→2 and 2→3 calls exist on the bus.
package models

import "time"

// Level is an ordinal rank in the call hierarchy.
type Level int

const (
	LevelInfrastructure Level = 0
	LevelSubagent       Level = 1
	LevelOrchestrator   Level = 2
	LevelOracle         Level = 3
)

// String returns the level's role name.
func (l Level) String() string {
	switch l {
	case LevelInfrastructure:
		return "infrastructure"
	case LevelSubagent:
		return "subagent"
	case LevelOrchestrator:
		return "orchestrator"
	case LevelOracle:
		return "oracle"
	default:
		return "unknown"
	}
}

// Urgency classifies how quickly a request needs an answer.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid reports whether u is one of the recognized urgency values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Responder identifies which responder class produced an answer.
type Responder string

const (
	ResponderOrchestrator Responder = "orchestrator"
	ResponderOracle       Responder = "oracle"
)

// Request status values.
const (
	StatusPending  = "pending"
	StatusAnswered = "answered"
	StatusTimedOut = "timed_out"
)

// Request is a question traveling up the bus. Immutable after creation
// except for Status, which the correlator and monitor may transition.
type Request struct {
	ID        string    `json:"id"`
	FromLevel Level     `json:"from_level"`
	ToLevel   Level     `json:"to_level"`
	Question  string    `json:"question"`
	Context   string    `json:"context,omitempty"`
	Urgency   Urgency   `json:"urgency"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// Response is the answer to a request, keyed by the same id. Created once,
// never mutated. Question is echoed so archived exchanges read standalone.
type Response struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Responder  Responder `json:"responder"`
	AnsweredAt time.Time `json:"answered_at"`
}

// HistoryRecord is the merged, immutable record of a completed exchange.
type HistoryRecord struct {
	Request    Request   `json:"request"`
	Response   Response  `json:"response"`
	ArchivedAt time.Time `json:"archived_at"`
}
