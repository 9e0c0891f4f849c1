package db

import (
	"encoding/json"
	"testing"

	"github.com/launchpilot/campaignchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetConversation(t *testing.T) {
	database := newTestDB(t)

	conv := &models.Conversation{
		ID:         "chat-1",
		WorkflowID: "wf-1",
		Messages: []models.ChatMessage{
			{Question: "What type of campaign?"},
		},
		CollectedParams: map[string]string{},
	}
	require.NoError(t, database.CreateConversation(conv))
	assert.Equal(t, int64(1), conv.Version)
	assert.False(t, conv.CreatedAt.IsZero())

	loaded, err := database.GetConversation("chat-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", loaded.WorkflowID)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "What type of campaign?", loaded.Messages[0].Question)
	assert.Nil(t, loaded.Messages[0].Response)
	assert.Empty(t, loaded.CollectedParams)
	assert.False(t, loaded.IsCompleted)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestGetConversationNotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := database.GetConversation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateConversation(t *testing.T) {
	database := newTestDB(t)

	conv := &models.Conversation{
		ID:              "chat-1",
		WorkflowID:      "wf-1",
		Messages:        []models.ChatMessage{{Question: "Q1"}},
		CollectedParams: map[string]string{},
	}
	require.NoError(t, database.CreateConversation(conv))

	conv.Messages[0].Response = strPtr("Welcome Series")
	conv.Messages = append(conv.Messages, models.ChatMessage{Question: "Q2"})
	conv.CollectedParams["CampaignType"] = "Welcome Series"
	require.NoError(t, database.UpdateConversation(conv, 1))
	assert.Equal(t, int64(2), conv.Version)

	loaded, err := database.GetConversation("chat-1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	require.NotNil(t, loaded.Messages[0].Response)
	assert.Equal(t, "Welcome Series", *loaded.Messages[0].Response)
	assert.Equal(t, map[string]string{"CampaignType": "Welcome Series"}, loaded.CollectedParams)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestUpdateConversationStaleVersion(t *testing.T) {
	database := newTestDB(t)

	conv := &models.Conversation{
		ID:              "chat-1",
		WorkflowID:      "wf-1",
		Messages:        []models.ChatMessage{{Question: "Q1"}},
		CollectedParams: map[string]string{},
	}
	require.NoError(t, database.CreateConversation(conv))
	require.NoError(t, database.UpdateConversation(conv, 1))

	// a second writer that read version 1 must be rejected
	stale := &models.Conversation{
		ID:              "chat-1",
		WorkflowID:      "wf-1",
		Messages:        []models.ChatMessage{{Question: "Q1"}},
		CollectedParams: map[string]string{},
	}
	err := database.UpdateConversation(stale, 1)
	assert.ErrorIs(t, err, ErrStaleVersion)
}

func TestUpdateConversationNotFound(t *testing.T) {
	database := newTestDB(t)

	conv := &models.Conversation{
		ID:              "missing",
		Messages:        []models.ChatMessage{{Question: "Q1"}},
		CollectedParams: map[string]string{},
	}
	err := database.UpdateConversation(conv, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateConversationCompletion(t *testing.T) {
	database := newTestDB(t)

	conv := &models.Conversation{
		ID:              "chat-1",
		WorkflowID:      "wf-1",
		Messages:        []models.ChatMessage{{Question: "Q1"}},
		CollectedParams: map[string]string{"CampaignType": "Newsletter"},
	}
	require.NoError(t, database.CreateConversation(conv))

	conv.IsCompleted = true
	conv.ExportPath = "campaign_launch_requirements_chat-1.json"
	require.NoError(t, database.UpdateConversation(conv, 1))

	loaded, err := database.GetConversation("chat-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsCompleted)
	assert.Equal(t, "campaign_launch_requirements_chat-1.json", loaded.ExportPath)
}

func TestWorkflowPutAndGet(t *testing.T) {
	database := newTestDB(t)

	wf := &models.Workflow{ID: "wf-1", Definition: json.RawMessage(`{"workFlowName":"Create New Campaign"}`)}
	require.NoError(t, database.PutWorkflow(wf))

	loaded, err := database.GetWorkflow("wf-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"workFlowName":"Create New Campaign"}`, string(loaded.Definition))

	// upsert replaces the definition
	wf.Definition = json.RawMessage(`{"workFlowName":"Updated"}`)
	require.NoError(t, database.PutWorkflow(wf))
	loaded, err = database.GetWorkflow("wf-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"workFlowName":"Updated"}`, string(loaded.Definition))
}

func TestWorkflowNotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := database.GetWorkflow("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
