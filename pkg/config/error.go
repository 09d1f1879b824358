package config

import "fmt"

// ErrInvalidConfig は設定値が不正であることを示します。
type ErrInvalidConfig struct {
	Field   string
	Details string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("設定エラー (%s): %s", e.Field, e.Details)
}
