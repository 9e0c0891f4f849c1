package models

import (
	"encoding/json"
	"time"
)

// ChatMessage is one asked question and its answer. Response stays nil until
// the user replies to that question.
type ChatMessage struct {
	Question string  `json:"question"`
	Response *string `json:"response"`
}

type Conversation struct {
	ID              string            `json:"id"`
	WorkflowID      string            `json:"workflow_id"`
	Messages        []ChatMessage     `json:"messages"`
	CollectedParams map[string]string `json:"collected_params"`
	IsCompleted     bool              `json:"is_completed"`
	ExportPath      string            `json:"export_path,omitempty"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
}

// LastMessage returns the pending question, the last entry of Messages.
func (c *Conversation) LastMessage() *ChatMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// Verdict is the classifier's structured judgement for one user turn.
type Verdict struct {
	Parameter    string `json:"parameter"`
	Value        string `json:"value"`
	Valid        bool   `json:"valid"`
	Message      string `json:"message"`
	NextQuestion string `json:"next_question"`
	Finished     bool   `json:"finished"`
}

// Workflow is an externally owned workflow definition; this service only
// stores and returns it, never interprets it.
type Workflow struct {
	ID         string          `json:"id"`
	Definition json.RawMessage `json:"definition"`
}
