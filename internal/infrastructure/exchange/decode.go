package exchange

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON 严格解码：类型不符或 required 字段缺失都返回 DecodeError，v 不可再使用
func DecodeJSON(exchange, endpoint string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: err}
	}
	if err := validateValue(v); err != nil {
		return &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: err}
	}
	return nil
}

// DecodeArray decodes a top-level JSON array and validates every element
func DecodeArray[T any](exchange, endpoint string, body []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: err}
	}
	if items == nil {
		return nil, Decodef(exchange, endpoint, "expected array, got null")
	}
	for i := range items {
		if err := validateValue(&items[i]); err != nil {
			return nil, &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: fmt.Errorf("[%d]: %w", i, err)}
		}
	}
	return items, nil
}

func validateValue(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.New("nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v)
}

// Number 价格字段，兼容 JSON number 与数字字符串。
// 非数字字符串不是解码错误，只是 Price() 返回 false，该报价被丢弃
type Number struct {
	value decimal.Decimal
	ok    bool
	raw   string
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("number: empty input")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		n.raw = s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n.raw = string(b)
	default:
		return fmt.Errorf("number: unexpected token %q", truncate(string(b), 16))
	}

	d, err := decimal.NewFromString(strings.TrimSpace(n.raw))
	n.value, n.ok = d, err == nil
	return nil
}

// Price returns the value when it parsed and is not negative
func (n *Number) Price() (decimal.Decimal, bool) {
	if n == nil || !n.ok || n.value.IsNegative() {
		return decimal.Decimal{}, false
	}
	return n.value, true
}

// Raw the string as received
func (n *Number) Raw() string {
	if n == nil {
		return ""
	}
	return n.raw
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
