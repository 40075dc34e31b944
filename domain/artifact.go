package domain

import "encoding/json"

// AgentSpec is the structured artifact produced by the agent pipeline.
// String fields are never null after a successful parse; slice fields
// default to empty rather than nil.
type AgentSpec struct {
	AgentName      string          `json:"agentName"`
	AgentType      string          `json:"agentType"`
	Description    string          `json:"description"`
	Capabilities   []string        `json:"capabilities"`
	TechStack      []string        `json:"techStack"`
	SuggestedTools []string        `json:"suggestedTools"`
	SystemPrompt   string          `json:"systemPrompt"`
	InputSchema    json.RawMessage `json:"inputSchema,omitempty"`
	OutputSchema   json.RawMessage `json:"outputSchema,omitempty"`
}

// ModelBuildBundle is the artifact produced by the LLM-build pipeline,
// one entry per stage. All four entries must be present for the bundle
// to be complete.
type ModelBuildBundle struct {
	SystemPrompt     string `json:"system_prompt"`
	DeploymentFile   string `json:"deployment_file"`
	FineTuneExamples string `json:"fine_tune_examples"`
	ModelCard        string `json:"model_card"`
}
