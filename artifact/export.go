package artifact

import (
	"encoding/json"
	"fmt"

	"github.com/or4cl3ai/arch1tech/domain"
)

// ExportFile is a named downloadable rendering of one bundle entry.
// Export is pure formatting with no network dependency.
type ExportFile struct {
	Name        string
	ContentType string
	Content     string
}

// Bundle entry names, also used as download path segments.
const (
	ExportSystemPrompt = "system_prompt"
	ExportDeployment   = "deployment_file"
	ExportFineTune     = "fine_tune_examples"
	ExportModelCard    = "model_card"
)

// BundleFiles renders every entry of a completed model build bundle.
func BundleFiles(b *domain.ModelBuildBundle) []ExportFile {
	return []ExportFile{
		{Name: "system_prompt.txt", ContentType: "text/plain", Content: b.SystemPrompt},
		{Name: "train_model.py", ContentType: "text/x-python", Content: b.DeploymentFile},
		{Name: "fine_tune_data.jsonl", ContentType: "application/x-ndjson", Content: b.FineTuneExamples},
		{Name: "MODEL_CARD.md", ContentType: "text/markdown", Content: b.ModelCard},
	}
}

// BundleFile renders a single bundle entry by its stage name.
func BundleFile(b *domain.ModelBuildBundle, name string) (ExportFile, error) {
	files := BundleFiles(b)
	switch name {
	case ExportSystemPrompt:
		return files[0], nil
	case ExportDeployment:
		return files[1], nil
	case ExportFineTune:
		return files[2], nil
	case ExportModelCard:
		return files[3], nil
	}
	return ExportFile{}, fmt.Errorf("unknown bundle entry %q", name)
}

// AgentSpecFile renders an agent spec as a downloadable JSON document.
func AgentSpecFile(spec *domain.AgentSpec) (ExportFile, error) {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return ExportFile{}, fmt.Errorf("failed to marshal agent spec: %w", err)
	}
	return ExportFile{
		Name:        "agent_spec.json",
		ContentType: "application/json",
		Content:     string(data),
	}, nil
}
