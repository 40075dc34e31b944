package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/or4cl3ai/arch1tech/artifact"
	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/llmclient"
)

// Stage names of the LLM-build pipeline, in execution order.
const (
	StageSystemPrompt = "system_prompt"
	StageDeployment   = "deployment_file"
	StageFineTune     = "fine_tune_examples"
	StageModelCard    = "model_card"
)

// LLMBuildDefinition builds the four-stage pipeline that produces a
// model build bundle. Later stages compose their requests from
// earlier stage outputs, so execution order is load-bearing.
func LLMBuildDefinition(cfg *config.Config) Definition {
	return Definition{
		Kind: domain.PipelineKindLLMBuild,
		Stages: []Stage{
			{
				Name: StageSystemPrompt,
				BuildRequest: func(in Input, _ map[string]any) llmclient.CompletionRequest {
					return llmclient.CompletionRequest{
						Model:             cfg.Model,
						SystemInstruction: "You write production-quality system prompts for custom language models. Reply with the system prompt text only.",
						UserContent: fmt.Sprintf(
							"Write the system prompt for a custom model named %q, derived from the base model %s.\nPurpose: %s",
							in.ModelName, in.BaseModel, in.Description),
						Temperature: cfg.BuildTemperature,
					}
				},
			},
			{
				Name: StageDeployment,
				BuildRequest: func(in Input, outputs map[string]any) llmclient.CompletionRequest {
					return llmclient.CompletionRequest{
						Model:             cfg.Model,
						SystemInstruction: "You write runnable Python fine-tuning and deployment scripts. Reply with code only, no commentary.",
						UserContent: fmt.Sprintf(
							"Write a single Python script that fine-tunes %s into a model named %q and serves it.\nPurpose: %s\nThe model's system prompt is:\n%s",
							in.BaseModel, in.ModelName, in.Description, stringOutput(outputs, StageSystemPrompt)),
						Temperature: cfg.BuildTemperature,
					}
				},
			},
			{
				Name: StageFineTune,
				BuildRequest: func(in Input, outputs map[string]any) llmclient.CompletionRequest {
					return llmclient.CompletionRequest{
						Model:             cfg.Model,
						SystemInstruction: "You generate fine-tuning datasets. Reply with newline-delimited JSON records, one object per line, no surrounding text.",
						UserContent: fmt.Sprintf(
							"Generate 10 training examples for the model %q (purpose: %s). Each line must be a JSON object {\"prompt\": ..., \"completion\": ...} consistent with this system prompt:\n%s",
							in.ModelName, in.Description, stringOutput(outputs, StageSystemPrompt)),
						Temperature: cfg.BuildTemperature,
					}
				},
				// Malformed lines are passed through unchanged rather
				// than dropped; we only log how many there are.
				HandleResult: func(_ context.Context, raw string) (any, error) {
					invalid := 0
					for _, line := range artifact.FineTuneLines(raw) {
						if !line.Valid {
							invalid++
						}
					}
					if invalid > 0 {
						log.Printf("WARN: fine-tune output contains %d malformed records, passing through", invalid)
					}
					return raw, nil
				},
			},
			{
				Name: StageModelCard,
				BuildRequest: func(in Input, outputs map[string]any) llmclient.CompletionRequest {
					return llmclient.CompletionRequest{
						Model:             cfg.Model,
						SystemInstruction: "You write professional model cards in Markdown, ready for a model hub. Reply with Markdown only.",
						UserContent: fmt.Sprintf(
							"Write the model card for %q (base model %s).\nPurpose: %s\nSystem prompt:\n%s",
							in.ModelName, in.BaseModel, in.Description, stringOutput(outputs, StageSystemPrompt)),
						Temperature: cfg.BuildTemperature,
					}
				},
			},
		},
		Assemble: AssembleBundle,
	}
}

// AssembleBundle shapes the four stage outputs into the final bundle.
func AssembleBundle(outputs map[string]any) any {
	return &domain.ModelBuildBundle{
		SystemPrompt:     stringOutput(outputs, StageSystemPrompt),
		DeploymentFile:   stringOutput(outputs, StageDeployment),
		FineTuneExamples: stringOutput(outputs, StageFineTune),
		ModelCard:        stringOutput(outputs, StageModelCard),
	}
}

func stringOutput(outputs map[string]any, name string) string {
	if s, ok := outputs[name].(string); ok {
		return s
	}
	return ""
}
