package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAIClient backs CompletionClient with the OpenAI Responses API.
type openAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a CompletionClient for the given model. The API key
// comes from the environment (OPENAI_API_KEY) unless apiKey is set.
func NewOpenAIClient(apiKey, model string) CompletionClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &openAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *openAIClient) Complete(ctx context.Context, instructions, input string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(1024),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	return resp.OutputText(), nil
}

// EntryTags is the structured-output shape for metadata extraction, used to
// populate daily-file frontmatter.
type EntryTags struct {
	Mood     string   `json:"mood" jsonschema_description:"Overall mood as a single lowercase word"`
	Keywords []string `json:"keywords" jsonschema_description:"Up to five keywords from the entry"`
	Topics   []string `json:"topics" jsonschema_description:"Up to three broad topics"`
	Tags     []string `json:"tags" jsonschema_description:"Up to five short tags"`
}

// MetadataExtractor is implemented by completion clients that support
// structured metadata extraction.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text string) (*EntryTags, error)
}

var entryMetadataSchema = generateSchema[EntryTags]()

// ExtractMetadata asks the model for frontmatter fields describing text,
// using a strict JSON schema response format.
func (c *openAIClient) ExtractMetadata(ctx context.Context, text string) (*EntryTags, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "EntryMetadata",
			Schema:      entryMetadataSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Journal entry metadata JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(512),
		Instructions:    openai.String(metadataInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}

	var out EntryTags
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.OutputText())), &out); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	out.Mood = strings.ToLower(strings.TrimSpace(out.Mood))
	return &out, nil
}

// generateSchema reflects T into an OpenAI-compliant JSON schema map.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureSchemaCompliance(m)
	return m
}

// ensureSchemaCompliance forces additionalProperties=false and marks every
// property required, which strict structured outputs demand.
func ensureSchemaCompliance(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			var required []string
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureSchemaCompliance(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureSchemaCompliance(items)
	}
}
