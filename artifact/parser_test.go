package artifact

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/or4cl3ai/arch1tech/domain"
)

const fullSpecJSON = `{"agentName":"PRSummarizer","agentType":"Monitoring","description":"Summarizes PRs daily","capabilities":["fetch PRs","summarize"],"techStack":["GitHub API"],"systemPrompt":"You summarize PRs.","inputSchema":{},"outputSchema":{},"suggestedTools":["GitHub API"]}`

func TestParseAgentSpec(t *testing.T) {
	spec, err := ParseAgentSpec(fullSpecJSON)
	require.NoError(t, err)

	assert.Equal(t, "PRSummarizer", spec.AgentName)
	assert.Equal(t, "Monitoring", spec.AgentType)
	assert.Len(t, spec.Capabilities, 2)
	assert.Equal(t, []string{"GitHub API"}, spec.TechStack)
	assert.Equal(t, "You summarize PRs.", spec.SystemPrompt)
}

func TestParseAgentSpecRoundTrip(t *testing.T) {
	spec, err := ParseAgentSpec(fullSpecJSON)
	require.NoError(t, err)

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	again, err := ParseAgentSpec(string(data))
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}

func TestParseAgentSpecDefaults(t *testing.T) {
	// Structured-output mode does not guarantee every field; absent
	// arrays become empty, absent strings stay empty.
	spec, err := ParseAgentSpec(`{"agentName":"Bare"}`)
	require.NoError(t, err)

	assert.Equal(t, "Bare", spec.AgentName)
	assert.Equal(t, "", spec.Description)
	assert.NotNil(t, spec.Capabilities)
	assert.Empty(t, spec.Capabilities)
	assert.NotNil(t, spec.TechStack)
	assert.NotNil(t, spec.SuggestedTools)
}

func TestParseAgentSpecInvalid(t *testing.T) {
	_, err := ParseAgentSpec("I'd be happy to help you build an agent!")

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "not valid structured data", valErr.Reason)
}

func TestParseAgentSpecCodeFence(t *testing.T) {
	fenced := "```json\n" + fullSpecJSON + "\n```"
	spec, err := ParseAgentSpec(fenced)
	require.NoError(t, err)
	assert.Equal(t, "PRSummarizer", spec.AgentName)
}

func TestFineTuneLines(t *testing.T) {
	raw := "{\"prompt\":\"a\",\"completion\":\"b\"}\n\nnot json at all\n{\"prompt\":\"c\"}"
	lines := FineTuneLines(raw)

	require.Len(t, lines, 3)
	assert.True(t, lines[0].Valid)
	assert.False(t, lines[1].Valid)
	assert.Equal(t, "not json at all", lines[1].Text) // passed through unchanged
	assert.True(t, lines[2].Valid)
}

func TestValidateFineTune(t *testing.T) {
	assert.NoError(t, ValidateFineTune("{\"a\":1}\n{\"b\":2}"))

	err := ValidateFineTune("{\"a\":1}\nbroken")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Reason, "line 2")
}

func TestBundleFiles(t *testing.T) {
	bundle := &domain.ModelBuildBundle{
		SystemPrompt:     "sp",
		DeploymentFile:   "print('train')",
		FineTuneExamples: "{\"a\":1}",
		ModelCard:        "# Card",
	}

	files := BundleFiles(bundle)
	require.Len(t, files, 4)
	assert.Equal(t, "system_prompt.txt", files[0].Name)
	assert.Equal(t, "train_model.py", files[1].Name)
	assert.Equal(t, "fine_tune_data.jsonl", files[2].Name)
	assert.Equal(t, "MODEL_CARD.md", files[3].Name)

	file, err := BundleFile(bundle, ExportModelCard)
	require.NoError(t, err)
	assert.Equal(t, "# Card", file.Content)

	_, err = BundleFile(bundle, "nope")
	assert.Error(t, err)
}

func TestAgentSpecFile(t *testing.T) {
	spec, err := ParseAgentSpec(fullSpecJSON)
	require.NoError(t, err)

	file, err := AgentSpecFile(spec)
	require.NoError(t, err)
	assert.Equal(t, "agent_spec.json", file.Name)
	assert.Contains(t, file.Content, "PRSummarizer")
}
