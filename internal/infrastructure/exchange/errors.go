package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"

	"feedgen/internal/domain/model"
)

const (
	EndpointSymbols = "symbols"
	EndpointPrices  = "prices"
	EndpointDetails = "details"
	EndpointAssets  = "assets"
)

// DecodeError 响应结构不符合预期，整个交易所本次结果作废
type DecodeError struct {
	Exchange string
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", e.Exchange, e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) FailureKind() model.FailureKind { return model.FailureDecode }

// Decodef builds a DecodeError from a formatted message
func Decodef(exchange, endpoint, format string, args ...any) *DecodeError {
	return &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: fmt.Errorf(format, args...)}
}

// FetchError 网络或 HTTP 层失败
type FetchError struct {
	Exchange string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Exchange, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

func (e *FetchError) FailureKind() model.FailureKind {
	if e.Timeout() {
		return model.FailureTimeout
	}
	return model.FailureFetch
}
