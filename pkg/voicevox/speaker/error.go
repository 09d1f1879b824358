package speaker

import "fmt"

// ErrMissingRequiredField は /speakers 応答に必要な話者やスタイルが見つからないことを示します。
type ErrMissingRequiredField struct {
	Field   string
	Context string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("%sに必須項目 %s が見つかりません", e.Context, e.Field)
}
