package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Expander turns a completed set of campaign parameters into a fully
// specified Dripify action script. Stateless; one completion per call.
type Expander struct {
	llm llms.Model
}

func NewExpander(model llms.Model) *Expander {
	return &Expander{llm: model}
}

var expansionParams = []string{
	"CampaignType",
	"CampaignDuration",
	"ContentType",
	"CallToAction",
	"PersonalizationLevel",
	"A/BTestingElements",
	"SuccessMetrics",
}

func (e *Expander) Expand(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	prompt := "You are a Dripify campaign launch expert. Your task is to fill out a complete workflow object based on the given campaign information. The workflow object should include all necessary details for launching a campaign in Dripify, including specific actions to perform, their descriptions, and relevant values.\n\nCampaign information:\n"
	for _, name := range expansionParams {
		value := params[name]
		if value == "" {
			value = "N/A"
		}
		prompt += fmt.Sprintf("%s: %s\n", name, value)
	}
	prompt += "\nPlease fill out the following workflow object template with appropriate values based on the campaign information:\n\n"
	prompt += workflowTemplate
	prompt += "\n\nPlease fill in all placeholders ({placeholder}) with appropriate values based on the campaign information provided. Ensure that the output is a valid JSON object and nothing else."

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt, llms.WithJSONMode())
	if err != nil {
		return nil, &GatewayError{err: fmt.Errorf("failed to generate workflow: %w", err)}
	}

	var filled map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &filled); err != nil {
		return nil, &GatewayError{err: fmt.Errorf("malformed workflow %q: %w", completion, err)}
	}

	// Timestamps come from this service, not the model.
	now := time.Now().UTC().Format(time.RFC3339)
	filled["createdAt"] = now
	filled["updatedAt"] = now

	out, err := json.Marshal(filled)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	return out, nil
}

const workflowTemplate = `{
  "workFlowName": "Create New Campaign",
  "endGoal": "Boost engagement with a {CampaignType} campaign",
  "variables": [
    {"CampaignType": "{CampaignType}"},
    {"CampaignDuration": "{CampaignDuration}"},
    {"ContentType": "{ContentType}"},
    {"CallToAction": "{CallToAction}"},
    {"PersonalizationLevel": "{PersonalizationLevel}"},
    {"A/BTestingElements": "{A/BTestingElements}"},
    {"SuccessMetrics": "{SuccessMetrics}"}
  ],
  "workFlowServiceName": "Dripify",
  "createdAt": "{current_utc_time}",
  "updatedAt": "{current_utc_time}",
  "actionsToPerform": [
    {
      "_id": "f27deb92-5b96-49cd-9c4e-5253308fdd46",
      "actionTitle": "Click on 'Campaigns'",
      "description": "Click on 'Campaigns'",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": "{CampaignType}"},
      "elemPath": "//*[@id='campaigns-link']",
      "eleClass": "aside__nav-link, js-ripple",
      "eleId": "campaigns-link",
      "actionType": "user"
    },
    {
      "_id": "d77e43e9-b0e0-4ed7-8d79-86ed71317138",
      "actionTitle": "Click on 'New Campaign'",
      "description": "Click on 'New Campaign'",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": ""},
      "elemPath": "/html/body/div[1]/div[1]/main/div[1]/div[1]/span/a/span",
      "eleClass": "",
      "eleId": "",
      "actionType": "user"
    },
    {
      "_id": "21cc0553-928c-49ef-a91e-e29669bd04e8",
      "actionTitle": "Click on 'Add Leads'",
      "description": "Click on 'Add Leads'",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": ""},
      "elemPath": "/html/body/div[1]/div[1]/main/div[1]/div/div[2]/div/section/div[2]/button",
      "eleClass": "btn, btn--base",
      "eleId": "",
      "actionType": "user"
    },
    {
      "_id": "77896e4e-8af8-4567-9533-d1df007ebe1e",
      "actionTitle": "Click to fill list name",
      "description": "Click to fill list name",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": "Boost engagement with a {CampaignType} campaign"},
      "elemPath": "//*[@id='leadsPackName']",
      "eleClass": "field__input",
      "eleId": "leadsPackName",
      "actionType": "user"
    },
    {
      "_id": "89ec2bc0-7cc1-467a-b908-74bcd3cca858",
      "actionTitle": "Fill list name",
      "description": "Fill list name",
      "toolUrl": "http://example.com",
      "action": {"type": "type", "value": "Boost engagement with a {CampaignType} campaign"},
      "elemPath": "//*[@id='leadsPackName']",
      "eleClass": "field__input",
      "eleId": "leadsPackName",
      "actionType": "user"
    },
    {
      "_id": "181dddca-141e-4cb1-b196-68bb10211eaf",
      "actionTitle": "Click to fill your saved search.",
      "description": "Click to fill your saved search.",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": ""},
      "elemPath": "//*[@id='LinkedInSearch']",
      "eleClass": "field__input",
      "eleId": "LinkedInSearch",
      "actionType": "user"
    },
    {
      "_id": "f381b70a-02ee-4ceb-bd1e-bdb0ae7bdad9",
      "actionTitle": "Fill your saved search.",
      "description": "Fill your saved search.",
      "toolUrl": "http://example.com",
      "action": {"type": "fill", "value": "{CampaignType}-saved-search-url"},
      "elemPath": "//*[@id='LinkedInSearch']",
      "eleClass": "field__input",
      "eleId": "LinkedInSearch",
      "actionType": "user"
    },
    {
      "_id": "a5b1c70a-02ee-4ceb-bd1e-bdb0ae7bdad9",
      "actionTitle": "Click on 'Create a list'",
      "description": "Click on 'Create a list'",
      "toolUrl": "http://example.com",
      "action": {"type": "click", "value": ""},
      "elemPath": "//*[@id='main']/section/section/div[3]/button[2]",
      "eleClass": "btn btn--primary btn--xlarge btn--addProspect",
      "eleId": "CreateAList",
      "actionType": "user"
    }
  ]
}`
