package scriptai

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// ResponseSchema は Response の JSON Schema です。
var ResponseSchema = generateSchema[Response]()

// StructuredOutputsResponseFormat は OpenAI の Structured Outputs 用の応答形式です。
func StructuredOutputsResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "dialogue_script",
		Description: openai.String("Speaker-attributed lines transcribed from a story"),
		Schema:      ResponseSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
