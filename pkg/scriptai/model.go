package scriptai

import "context"

// Completer は system/user プロンプトから JSON テキストを生成する LLM 呼び出しを抽象化します。
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Response は LLM に要求する出力形式です。
type Response struct {
	Title  string `json:"title" jsonschema_description:"Short title of the scene or lesson"`
	Level  string `json:"level" jsonschema_description:"CEFR level of the text such as A1 or B2 (empty when unknown)"`
	Script []Line `json:"script" jsonschema_description:"Every sentence of the story in reading order"`
}

// Line は1発話です。
type Line struct {
	Speaker string `json:"speaker" jsonschema_description:"Character name exactly as listed in the cast or Narrator for descriptive text"`
	Text    string `json:"text" jsonschema_description:"The sentence verbatim from the input"`
}
