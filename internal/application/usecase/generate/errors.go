package generate

import (
	"errors"
	"fmt"
	"strings"

	"feedgen/internal/domain/model"
)

var (
	// ErrNoExchangeData 所有交易所都失败，不生成文档
	ErrNoExchangeData = errors.New("no exchange returned data")

	// ErrInvalidRegistry feed 注册表无效
	ErrInvalidRegistry = errors.New("invalid feed registry")
)

// GenerationError run-level failure; Failures lists every exchange that failed
type GenerationError struct {
	Reason   error
	Failures []model.ExchangeFailure
	Err      error
}

func (e *GenerationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Reason.Error())
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if len(e.Failures) > 0 {
		parts := make([]string, 0, len(e.Failures))
		for _, f := range e.Failures {
			parts = append(parts, fmt.Sprintf("%s(%s)", f.Exchange, f.Kind))
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(parts, ", "))
	}
	return sb.String()
}

// Unwrap exposes both the sentinel reason and the underlying cause to errors.Is
func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}
