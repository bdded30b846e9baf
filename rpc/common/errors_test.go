package common

import (
	"context"
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		is   func(error) bool
	}{
		{"InvalidArgument", NewInvalidArgumentError("bad %s", "input"), KindInvalidArgument, IsInvalidArgument},
		{"Transport", NewTransportError(errors.New("broken pipe")), KindTransport, IsTransport},
		{"Malformed", NewMalformedResponseError("nope", nil), KindMalformedResponse, IsMalformedResponse},
		{"Server", NewServerError("key not found", ""), KindServer, IsServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.True(t, tt.is(tt.err))

			// a wrapped error keeps its kind
			wrapped := fmt.Errorf("while testing: %w", tt.err)
			assert.True(t, tt.is(wrapped))
			assert.Equal(t, tt.kind, KindOf(wrapped))

			for _, other := range tests {
				if other.kind != tt.kind {
					assert.False(t, other.is(tt.err), "%s must not match %s", tt.kind, other.kind)
				}
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "t38: server error: key not found", NewServerError("key not found", `{"ok":false}`).Error())
	assert.Equal(t, `t38: server error: unexpected response (reply: "{\"ok\":false}")`, NewServerError("", `{"ok":false}`).Error())
	assert.Equal(t, "t38: invalid argument: bad input", NewInvalidArgumentError("bad %s", "input").Error())
	assert.Equal(t, "t38: transport error: broken pipe", NewTransportError(errors.New("broken pipe")).Error())
	assert.Equal(t, "t38: transport error", (&Error{Kind: KindTransport}).Error())
}

func TestServerErrorKeepsRawOnlyWithoutMessage(t *testing.T) {
	var e *Error

	assert.True(t, errors.As(NewServerError("id not found", `{"ok":false,"err":"id not found"}`), &e))
	assert.Equal(t, "id not found", e.Msg)
	assert.Empty(t, e.Raw)

	assert.True(t, errors.As(NewServerError("", `{"ok":false}`), &e))
	assert.Equal(t, "unexpected response", e.Msg)
	assert.Equal(t, `{"ok":false}`, e.Raw)
}

func TestTransportErrorUnwrap(t *testing.T) {
	err := NewTransportError(context.DeadlineExceeded)
	assert.True(t, IsTransport(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestTransportErrorKeepsExistingKind(t *testing.T) {
	server := NewServerError("read only", "")
	assert.Same(t, server, NewTransportError(server))

	wrapped := fmt.Errorf("redis: %w", server)
	assert.True(t, IsServer(NewTransportError(wrapped)))
	assert.False(t, IsTransport(NewTransportError(wrapped)))
}

func TestMalformedResponseUnwrap(t *testing.T) {
	cause := errors.New("unexpected end of input")
	err := NewMalformedResponseError("{", cause)
	assert.True(t, errors.Is(err, cause))

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "{", e.Raw)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(0), KindOf(nil))
	assert.Equal(t, "unknown error", ErrorKind(0).String())
}
