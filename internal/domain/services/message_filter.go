package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jessica-dev/jessica/internal/domain/entities"
)

// MessageEnv defines the variables available during filter expression evaluation.
type MessageEnv struct {
	Severity     string `expr:"severity"`
	Kind         string `expr:"kind"`
	Text         string `expr:"text"`
	Note         string `expr:"note"`
	Level        int    `expr:"level"`
	Seq          int    `expr:"seq"`
	Continuation bool   `expr:"continuation"`
}

// MessageFilter selects LogMessages with a boolean expr expression, e.g.
//
//	level >= 2 && !continuation
//	kind == "warn_sprite_unref" || text contains "tall"
type MessageFilter struct {
	program *vm.Program
	source  string
}

// CompileMessageFilter compiles expression. An empty expression matches
// every message.
func CompileMessageFilter(expression string) (*MessageFilter, error) {
	if expression == "" {
		return &MessageFilter{}, nil
	}
	program, err := expr.Compile(expression, expr.Env(MessageEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &MessageFilter{program: program, source: expression}, nil
}

// String returns the source expression.
func (f *MessageFilter) String() string {
	return f.source
}

// Match reports whether m passes the filter. Evaluation errors exclude the message.
func (f *MessageFilter) Match(m entities.LogMessage) bool {
	if f == nil || f.program == nil {
		return true
	}
	env := MessageEnv{
		Severity:     m.Severity.String(),
		Kind:         string(m.Kind),
		Text:         m.Raw,
		Note:         m.Note,
		Level:        m.Severity.Level(),
		Seq:          m.Seq,
		Continuation: m.Continuation,
	}
	output, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

// Apply returns the messages that pass the filter, in order.
func (f *MessageFilter) Apply(messages []entities.LogMessage) []entities.LogMessage {
	if f == nil || f.program == nil {
		return messages
	}
	out := make([]entities.LogMessage, 0, len(messages))
	for _, m := range messages {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}
