package pipeline

import (
	"context"
	"fmt"

	"github.com/or4cl3ai/arch1tech/artifact"
	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/llmclient"
	"github.com/or4cl3ai/arch1tech/policy"
)

// StageAgentSpec is the single stage of the agent pipeline.
const StageAgentSpec = "agent_spec"

const agentSystemInstruction = `You are the Arch1tech agent designer. Given an idea, design an AI agent for it.
Return a single JSON object with exactly these fields:
agentName (string), agentType (string), description (string),
capabilities (array of strings), techStack (array of strings),
suggestedTools (array of strings), systemPrompt (string),
inputSchema (JSON schema object), outputSchema (JSON schema object).
Respond with the JSON object only.`

// AgentDefinition builds the one-stage pipeline that turns an idea
// into a validated AgentSpec. When a policy engine is supplied, a
// blocked spec fails the stage the same way a parse failure would.
func AgentDefinition(cfg *config.Config, guard *policy.Engine) Definition {
	return Definition{
		Kind: domain.PipelineKindAgent,
		Stages: []Stage{
			{
				Name: StageAgentSpec,
				BuildRequest: func(in Input, _ map[string]any) llmclient.CompletionRequest {
					return llmclient.CompletionRequest{
						Model:             cfg.Model,
						SystemInstruction: agentSystemInstruction,
						UserContent:       in.Idea,
						Temperature:       cfg.ExtractTemperature,
						StructuredOutput:  true,
					}
				},
				HandleResult: func(ctx context.Context, raw string) (any, error) {
					spec, err := artifact.ParseAgentSpec(raw)
					if err != nil {
						return nil, err
					}
					if guard != nil {
						decision, reason, err := guard.Evaluate(ctx, policyInput(spec))
						if err != nil {
							return nil, fmt.Errorf("artifact policy evaluation failed: %w", err)
						}
						if decision != "allow" {
							if reason == "" {
								reason = decision
							}
							return nil, fmt.Errorf("agent spec rejected by artifact policy: %s", reason)
						}
					}
					return spec, nil
				},
			},
		},
		Assemble: func(outputs map[string]any) any {
			return outputs[StageAgentSpec]
		},
	}
}

func policyInput(spec *domain.AgentSpec) map[string]any {
	return map[string]any{
		"agent_name":      spec.AgentName,
		"agent_type":      spec.AgentType,
		"system_prompt":   spec.SystemPrompt,
		"capabilities":    spec.Capabilities,
		"suggested_tools": spec.SuggestedTools,
	}
}
