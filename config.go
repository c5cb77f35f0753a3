package electric

// Config holds configuration for the Engine.
type Config struct {
	// MaxScopeDepth is the depth limit for a scope resolver's BFS walk
	// toward a scope root, for a host that builds one with
	// graph.NewDefaultWalker. The engine itself does not read it.
	// Defaults to 10.
	MaxScopeDepth int `json:"max_scope_depth,omitempty"`

	// EnableColumnProjectionOnRead applies a grant's column list to
	// outbound changes on the read path, not just writes. Defaults to
	// true.
	EnableColumnProjectionOnRead *bool `json:"enable_column_projection_on_read,omitempty"`

	// EnableDecisionLog records every allow/deny decision to the
	// configured decisionlog.Sink. Defaults to false.
	EnableDecisionLog *bool `json:"enable_decision_log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true

	return Config{
		MaxScopeDepth:                10,
		EnableColumnProjectionOnRead: &t,
	}
}

func (c Config) columnProjectionOnReadEnabled() bool {
	return c.EnableColumnProjectionOnRead == nil || *c.EnableColumnProjectionOnRead
}

func (c Config) decisionLogEnabled() bool {
	return c.EnableDecisionLog != nil && *c.EnableDecisionLog
}
