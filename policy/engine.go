// Package policy evaluates guardrail policies over generated
// artifacts before a pipeline accepts them.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.artifact_policy.decision"),
		rego.Module("artifact_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the artifact policy. Input is a map describing the
// generated artifact (agent_name, system_prompt, capabilities, ...).
// Returns the decision (allow, block) and an optional reason.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy is expected to define a default.
		return "allow", "default", nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, "", nil
	}

	return "allow", "unexpected return type", nil
}

// DefaultPolicy is the default artifact policy content. A blocked
// spec fails the run the same way a validation error would.
const DefaultPolicy = `
package artifact_policy

default decision = "allow"

# A spec without a system prompt is not deployable.
decision = "block" if {
	input.system_prompt == ""
}

# Capabilities the builder refuses to emit.
decision = "block" if {
	some capability in input.capabilities
	lower(capability) == "self-replication"
}
`
