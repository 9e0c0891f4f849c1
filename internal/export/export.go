package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileExporter writes conversation artifacts as JSON files under Dir.
// Writes are last-write-wins per conversation id.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

func ArtifactPath(dir, conversationID string) string {
	return filepath.Join(dir, fmt.Sprintf("campaign_launch_requirements_%s.json", conversationID))
}

func FilledWorkflowPath(dir, conversationID string) string {
	return filepath.Join(dir, fmt.Sprintf("filled_workflow_%s.json", conversationID))
}

// Export serializes the collected parameters for one conversation and
// returns the artifact path.
func (e *FileExporter) Export(conversationID string, params map[string]string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode campaign info: %w", err)
	}

	path := ArtifactPath(e.dir, conversationID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write campaign info: %w", err)
	}
	return path, nil
}

// ReadArtifact loads a previously exported parameter map.
func (e *FileExporter) ReadArtifact(conversationID string) (map[string]string, error) {
	data, err := os.ReadFile(ArtifactPath(e.dir, conversationID))
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign info: %w", err)
	}

	params := map[string]string{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to decode campaign info: %w", err)
	}
	return params, nil
}

// SaveFilledWorkflow persists the expanded action script next to the
// parameter artifact.
func (e *FileExporter) SaveFilledWorkflow(conversationID string, workflow json.RawMessage) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	var indented map[string]any
	if err := json.Unmarshal(workflow, &indented); err != nil {
		return "", fmt.Errorf("failed to decode filled workflow: %w", err)
	}
	data, err := json.MarshalIndent(indented, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode filled workflow: %w", err)
	}

	path := FilledWorkflowPath(e.dir, conversationID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write filled workflow: %w", err)
	}
	return path, nil
}
