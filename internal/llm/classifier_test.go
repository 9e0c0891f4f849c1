package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

type fakeModel struct {
	completion string
	err        error
	messages   []llms.MessageContent
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.completion}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.completion, nil
}

const validCompletion = `{
	"parameter": "CampaignType",
	"value": "Welcome Series",
	"valid": true,
	"message": "",
	"next_question": "How often should emails be sent?",
	"finished": false
}`

func TestClassifyReturnsVerdict(t *testing.T) {
	model := &fakeModel{completion: validCompletion}
	gateway := NewWithModel(model)

	verdict, err := gateway.Classify(context.Background(), []Turn{
		{Role: RoleAssistant, Text: "What type of campaign?"},
		{Role: RoleUser, Text: "welcome emails"},
	})
	require.NoError(t, err)
	assert.Equal(t, "CampaignType", verdict.Parameter)
	assert.Equal(t, "Welcome Series", verdict.Value)
	assert.True(t, verdict.Valid)
	assert.Equal(t, "How often should emails be sent?", verdict.NextQuestion)
	assert.False(t, verdict.Finished)
}

func TestClassifyMapsRoles(t *testing.T) {
	model := &fakeModel{completion: validCompletion}
	gateway := NewWithModel(model)

	_, err := gateway.Classify(context.Background(), []Turn{
		{Role: RoleAssistant, Text: "question"},
		{Role: RoleUser, Text: "answer"},
	})
	require.NoError(t, err)

	// two system instruction messages, then the exchange
	require.Len(t, model.messages, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[3].Role)
}

func TestClassifyRemoteFailureIsGatewayError(t *testing.T) {
	remoteErr := errors.New("connection refused")
	gateway := NewWithModel(&fakeModel{err: remoteErr})

	_, err := gateway.Classify(context.Background(), []Turn{{Role: RoleUser, Text: "hi"}})
	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.ErrorIs(t, err, remoteErr)
}

func TestClassifyMalformedVerdictIsGatewayError(t *testing.T) {
	for name, completion := range map[string]string{
		"not json":      "I think that's a Welcome Series campaign!",
		"missing field": `{"parameter":"CampaignType","value":"x","valid":false,"message":"m","finished":false}`,
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			gateway := NewWithModel(&fakeModel{completion: completion})
			_, err := gateway.Classify(context.Background(), []Turn{{Role: RoleUser, Text: "hi"}})
			var gatewayErr *GatewayError
			assert.ErrorAs(t, err, &gatewayErr)
		})
	}
}

func TestParseVerdictStripsCodeFence(t *testing.T) {
	verdict, err := parseVerdict("```json\n" + validCompletion + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "CampaignType", verdict.Parameter)
}

func TestParseVerdictInvalidFlagIsNotAnError(t *testing.T) {
	verdict, err := parseVerdict(`{
		"parameter": "CampaignType",
		"value": "",
		"valid": false,
		"message": "Please choose one of the allowed campaign types.",
		"next_question": "What type of campaign do you want?",
		"finished": false
	}`)
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, "Please choose one of the allowed campaign types.", verdict.Message)
}
