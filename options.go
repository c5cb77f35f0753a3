package electric

import (
	"log/slog"

	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/decisionlog"
	"github.com/ivanbatic/electric/plugin"
	"github.com/ivanbatic/electric/transient"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithDecisionLog sets the sink every allow/deny decision is recorded
// to when Config.EnableDecisionLog is set.
func WithDecisionLog(s decisionlog.Sink) Option { return func(e *Engine) { e.decisionLog = s } }

// WithTransientStore sets the process-wide transient-permissions store
// the engine consults alongside the write buffer's own same-transaction
// transient roles.
func WithTransientStore(s transient.Store) Option { return func(e *Engine) { e.transientStore = s } }

// WithPredicateCompiler overrides the CHECK-condition compiler. The
// default evaluates the engine's built-in comparison operators.
func WithPredicateCompiler(c check.PredicateCompiler) Option {
	return func(e *Engine) { e.predicateCompiler = c }
}

// WithPlugin registers a plugin with the engine.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(p)
	}
}
