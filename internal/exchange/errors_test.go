package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	apiErr := fmt.Errorf("주문 실패: %w", &APIError{HTTPStatus: 400, Code: -1013, Message: "Filter failure: NOTIONAL"})
	assert.True(t, errors.Is(apiErr, ErrRejected))
	assert.False(t, errors.Is(apiErr, ErrTransport))

	var target *APIError
	assert.True(t, errors.As(apiErr, &target))
	assert.Equal(t, -1013, target.Code)

	transport := &TransportError{Op: "GET /api/v3/account", Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(transport, ErrTransport))
	assert.True(t, errors.Is(transport, context.DeadlineExceeded))
	assert.False(t, errors.Is(transport, ErrRejected))

	notFound := NotFound("FOOUSDT")
	assert.True(t, errors.Is(notFound, ErrSymbolNotFound))
	assert.Contains(t, notFound.Error(), "FOOUSDT")
}
