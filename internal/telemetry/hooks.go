package telemetry

import (
	"github.com/rs/zerolog"
)

// Hooks centralizes server lifecycle logging. It is intentionally minimal;
// metrics backends can be added later under this package.
type Hooks struct {
	logger zerolog.Logger
}

// NewHooks constructs a Hooks instance with the provided logger.
func NewHooks(logger zerolog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// OnSessionRegistered records the start of a client session.
func (h *Hooks) OnSessionRegistered(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("session registered")
}

// OnSessionUnregistered records the end of a client session.
func (h *Hooks) OnSessionUnregistered(sessionID string) {
	h.logger.Info().Str("session_id", sessionID).Msg("session unregistered")
}

// OnListTools logs tool discovery requests. Kept light: tool count only.
func (h *Hooks) OnListTools(count int) {
	h.logger.Info().Int("tools", count).Msg("list_tools served")
}

// OnToolCall logs tool invocations.
func (h *Hooks) OnToolCall(toolName string) {
	h.logger.Info().Str("tool", toolName).Msg("tool call served")
}

// OnError logs request-level failures.
func (h *Hooks) OnError(method string, err error) {
	h.logger.Error().Str("method", method).Err(err).Msg("request error")
}
