// Package responder contains command-backed Responder implementations.
//
// Both responder classes — the orchestrator's answer engine and the human
// relay — are external collaborators the bus only knows as an answer
// capability. The adapter runs a configured command, feeds it the request,
// and reads the answer from stdout. What the command does (calls a model,
// pings a chat channel and waits) is its own business.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/secondary"
)

// CommandResponder implements secondary.Responder by invoking an external
// command. The request is serialized as JSON on stdin; question, context and
// urgency are additionally exposed as ORDINAL_* environment variables for
// shell one-liners that don't want to parse JSON.
type CommandResponder struct {
	name    string
	command []string
}

// NewCommandResponder creates a responder that runs the given command line.
// name identifies the responder in error messages.
func NewCommandResponder(name string, command []string) (*CommandResponder, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("responder %s: no command configured", name)
	}
	return &CommandResponder{name: name, command: command}, nil
}

// Answer runs the command and returns its trimmed stdout as the answer.
func (r *CommandResponder) Answer(ctx context.Context, req *models.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("responder %s: failed to encode request: %w", r.name, err)
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(),
		"ORDINAL_REQUEST_ID="+req.ID,
		"ORDINAL_QUESTION="+req.Question,
		"ORDINAL_CONTEXT="+req.Context,
		"ORDINAL_URGENCY="+string(req.Urgency),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("responder %s unavailable: %w: %s", r.name, err, strings.TrimSpace(stderr.String()))
	}

	answer := strings.TrimSpace(stdout.String())
	if answer == "" {
		return "", fmt.Errorf("responder %s returned an empty answer", r.name)
	}
	return answer, nil
}

// Ensure CommandResponder implements the interface
var _ secondary.Responder = (*CommandResponder)(nil)
