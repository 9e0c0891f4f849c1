package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/launchpilot/campaignchat/internal/llm"
	"github.com/launchpilot/campaignchat/internal/models"
)

// openingQuestion is the fixed first turn of every conversation; no model
// call is needed to produce it.
const openingQuestion = "Hello! I'm excited to help you launch your Dripify campaign. To get started, could you tell me what type of campaign you want to create? For example, Welcome Series, Product Launch, Customer Re-engagement, etc."

var ErrWorkflowIDRequired = errors.New("workflow id is required")

// Store is the conversation persistence contract. UpdateConversation must
// reject writes whose expectedVersion no longer matches the stored record.
type Store interface {
	CreateConversation(conv *models.Conversation) error
	GetConversation(id string) (*models.Conversation, error)
	UpdateConversation(conv *models.Conversation, expectedVersion int64) error
}

// WorkflowLookup resolves the external workflow definition returned to the
// caller when a conversation completes.
type WorkflowLookup interface {
	GetWorkflow(id string) (*models.Workflow, error)
}

// Exporter writes the collected parameters to a durable artifact and returns
// its reference.
type Exporter interface {
	Export(conversationID string, params map[string]string) (string, error)
}

// ValidationError carries the classifier's explanation of why the latest
// user answer could not be mapped. Nothing is persisted when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type StartResult struct {
	ConversationID string `json:"chat_id"`
	Question       string `json:"question"`
}

// TurnResult is the outcome of one continue call. Either NextQuestion is set,
// or Finished is true and Workflow holds the external workflow definition.
type TurnResult struct {
	ConversationID string
	NextQuestion   string
	Finished       bool
	Workflow       *models.Workflow
}

// Service is the conversation state machine. All record mutation goes
// through Start and Continue.
type Service struct {
	store      Store
	workflows  WorkflowLookup
	classifier llm.Classifier
	exporter   Exporter

	locks sync.Map // conversation id -> *sync.Mutex
}

func NewService(store Store, workflows WorkflowLookup, classifier llm.Classifier, exporter Exporter) *Service {
	return &Service{
		store:      store,
		workflows:  workflows,
		classifier: classifier,
		exporter:   exporter,
	}
}

// Start creates a conversation seeded with the opening question.
func (s *Service) Start(ctx context.Context, workflowID string) (*StartResult, error) {
	if workflowID == "" {
		return nil, ErrWorkflowIDRequired
	}

	conv := &models.Conversation{
		ID:              uuid.NewString(),
		WorkflowID:      workflowID,
		Messages:        []models.ChatMessage{{Question: openingQuestion}},
		CollectedParams: map[string]string{},
	}
	if err := s.store.CreateConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &StartResult{ConversationID: conv.ID, Question: openingQuestion}, nil
}

// Continue applies one user turn. The whole read-classify-write sequence is
// serialized per conversation id; the store's version check catches writers
// from other processes.
func (s *Service) Continue(ctx context.Context, conversationID, userText string) (*TurnResult, error) {
	mu := s.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	conv, err := s.store.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	readVersion := conv.Version

	last := conv.LastMessage()
	if last == nil {
		return nil, fmt.Errorf("conversation %s has no pending question", conversationID)
	}
	// Overwrite rather than append: a retry of the same turn attaches the
	// answer to the same pending question instead of duplicating it.
	last.Response = &userText

	verdict, err := s.classifier.Classify(ctx, buildExchange(conv.Messages))
	if err != nil {
		return nil, err
	}

	if !verdict.Valid {
		return nil, &ValidationError{Message: verdict.Message}
	}

	conv.CollectedParams[verdict.Parameter] = verdict.Value
	conv.Messages = append(conv.Messages, models.ChatMessage{Question: verdict.NextQuestion})

	if verdict.Finished {
		path, err := s.exporter.Export(conv.ID, conv.CollectedParams)
		if err != nil {
			return nil, fmt.Errorf("failed to export campaign info: %w", err)
		}
		conv.IsCompleted = true
		conv.ExportPath = path
	}

	if err := s.store.UpdateConversation(conv, readVersion); err != nil {
		return nil, err
	}

	if verdict.Finished {
		wf, err := s.workflows.GetWorkflow(conv.WorkflowID)
		if err != nil {
			return nil, err
		}
		return &TurnResult{ConversationID: conv.ID, Finished: true, Workflow: wf}, nil
	}

	return &TurnResult{ConversationID: conv.ID, NextQuestion: verdict.NextQuestion}, nil
}

// buildExchange projects the message history into the linear exchange the
// classifier expects: each question as an assistant turn, each given answer
// as a user turn. The newest user turn is the response attached to the
// pending question.
func buildExchange(messages []models.ChatMessage) []llm.Turn {
	exchange := make([]llm.Turn, 0, 2*len(messages))
	for _, msg := range messages {
		exchange = append(exchange, llm.Turn{Role: llm.RoleAssistant, Text: msg.Question})
		if msg.Response != nil {
			exchange = append(exchange, llm.Turn{Role: llm.RoleUser, Text: *msg.Response})
		}
	}
	return exchange
}

func (s *Service) lockFor(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
