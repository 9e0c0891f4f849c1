package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(dir)

	params := map[string]string{
		"CampaignType":   "Welcome Series",
		"EmailFrequency": "Weekly",
	}

	path, err := exporter.Export("chat-1", params)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "campaign_launch_requirements_chat-1.json"), path)

	loaded, err := exporter.ReadArtifact("chat-1")
	require.NoError(t, err)
	assert.Equal(t, params, loaded)
}

func TestExportOverwrites(t *testing.T) {
	exporter := NewFileExporter(t.TempDir())

	_, err := exporter.Export("chat-1", map[string]string{"CampaignType": "Newsletter"})
	require.NoError(t, err)
	_, err = exporter.Export("chat-1", map[string]string{"CampaignType": "Product Launch"})
	require.NoError(t, err)

	loaded, err := exporter.ReadArtifact("chat-1")
	require.NoError(t, err)
	assert.Equal(t, "Product Launch", loaded["CampaignType"])
}

func TestExportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	exporter := NewFileExporter(dir)

	_, err := exporter.Export("chat-1", map[string]string{})
	require.NoError(t, err)

	_, err = os.Stat(ArtifactPath(dir, "chat-1"))
	assert.NoError(t, err)
}

func TestReadArtifactMissing(t *testing.T) {
	exporter := NewFileExporter(t.TempDir())

	_, err := exporter.ReadArtifact("nope")
	assert.Error(t, err)
}

func TestSaveFilledWorkflow(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(dir)

	path, err := exporter.SaveFilledWorkflow("chat-1", json.RawMessage(`{"workFlowName":"Create New Campaign"}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "filled_workflow_chat-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "Create New Campaign", saved["workFlowName"])
}
