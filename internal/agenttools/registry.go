package agenttools

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownTool = errors.New("unknown tool")

// Tool names exposed to the voice agent runtime.
const (
	ToolSearchClaims = "search_insurance_claims"
	ToolTransfer     = "transfer_to_advisor"
	ToolIdentifyUser = "identify_and_profile_user"
	ToolVerifyCode   = "verify_2fa_code"
)

// ToolFunc executes one agent tool for a session and returns the text the
// agent speaks or reasons over.
type ToolFunc func(ctx context.Context, sessionID string, input string) string

// Registry maps tool names to their implementations.
type Registry struct {
	tools map[string]ToolFunc
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ToolFunc)}
}

// Register adds a tool under the given name, replacing any prior binding.
func (r *Registry) Register(name string, fn ToolFunc) {
	r.tools[name] = fn
}

// Invoke runs the named tool. Unknown names return ErrUnknownTool.
func (r *Registry) Invoke(ctx context.Context, name string, sessionID string, input string) (string, error) {
	fn, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownTool)
	}
	return fn(ctx, sessionID, input), nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
