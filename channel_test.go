package hmsservices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindHandler(t *testing.T, messenger *LocalMessenger, channel string, handler MethodCallHandlerFunc) *MethodChannel {
	t.Helper()
	registrar := NewPluginRegistrar(messenger, nil, testLogger())
	require.NoError(t, registrar.Bind(channel, handler))
	return NewMethodChannel(channel, messenger, nil, testLogger())
}

func TestMethodChannel_Replies(t *testing.T) {
	ctx := context.Background()
	messenger := NewLocalMessenger(testLogger())

	t.Run("echo arguments", func(t *testing.T) {
		channel := bindHandler(t, messenger, "echo", func(ctx context.Context, call *MethodCall, result Result) {
			result.Success(call.Arguments)
		})

		got, err := channel.InvokeMethod(ctx, "anything", map[string]any{"k": "v"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"k": "v"}, got)
	})

	t.Run("method error", func(t *testing.T) {
		channel := bindHandler(t, messenger, "failing", func(ctx context.Context, call *MethodCall, result Result) {
			result.Error("denied", "permission denied", nil)
		})

		_, err := channel.InvokeMethod(ctx, "read", nil)
		var methodErr *MethodError
		require.ErrorAs(t, err, &methodErr)
		assert.Equal(t, "denied", methodErr.Code)
		assert.Equal(t, "permission denied", methodErr.Message)
		assert.NotErrorIs(t, err, ErrNotImplemented)
	})

	t.Run("only the first reply counts", func(t *testing.T) {
		channel := bindHandler(t, messenger, "chatty", func(ctx context.Context, call *MethodCall, result Result) {
			result.Success("first")
			result.Success("second")
			result.Error("late", "", nil)
			result.NotImplemented()
		})

		got, err := channel.InvokeMethod(ctx, "talk", nil)
		require.NoError(t, err)
		assert.Equal(t, "first", got)
	})

	t.Run("missing reply", func(t *testing.T) {
		channel := bindHandler(t, messenger, "silent", func(ctx context.Context, call *MethodCall, result Result) {})

		_, err := channel.InvokeMethod(ctx, "hello", nil)
		var methodErr *MethodError
		require.ErrorAs(t, err, &methodErr)
		assert.Equal(t, CodeMissingReply, methodErr.Code)
	})

	t.Run("panic is contained", func(t *testing.T) {
		channel := bindHandler(t, messenger, "panicky", func(ctx context.Context, call *MethodCall, result Result) {
			panic("boom")
		})

		_, err := channel.InvokeMethod(ctx, "explode", nil)
		var methodErr *MethodError
		require.ErrorAs(t, err, &methodErr)
		assert.Equal(t, CodeHandlerPanic, methodErr.Code)
		assert.Equal(t, "boom", methodErr.Message)
	})

	t.Run("reply before panic wins", func(t *testing.T) {
		channel := bindHandler(t, messenger, "late-panic", func(ctx context.Context, call *MethodCall, result Result) {
			result.Success(1)
			panic("after reply")
		})

		got, err := channel.InvokeMethod(ctx, "x", nil)
		require.NoError(t, err)
		assert.Equal(t, float64(1), got)
	})
}

func TestMethodChannel_InvalidUTF8InErrorReplies(t *testing.T) {
	for _, codec := range []MethodCodec{StandardMethodCodec{}, JSONMethodCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			messenger := NewLocalMessenger(testLogger())
			registrar := NewPluginRegistrar(messenger, codec, testLogger())
			require.NoError(t, registrar.Bind("raw", MethodCallHandlerFunc(func(ctx context.Context, call *MethodCall, result Result) {
				switch call.Method {
				case "error":
					result.Error("denied\xff", "bad \xff byte", nil)
				case "panic":
					panic("boom \xfe")
				}
			})))
			channel := NewMethodChannel("raw", messenger, codec, testLogger())

			_, err := channel.InvokeMethod(context.Background(), "error", nil)
			var methodErr *MethodError
			require.ErrorAs(t, err, &methodErr)
			assert.Equal(t, "denied\uFFFD", methodErr.Code)
			assert.Equal(t, "bad \uFFFD byte", methodErr.Message)

			_, err = channel.InvokeMethod(context.Background(), "panic", nil)
			require.ErrorAs(t, err, &methodErr)
			assert.Equal(t, CodeHandlerPanic, methodErr.Code)
			assert.Equal(t, "boom \uFFFD", methodErr.Message)
		})
	}
}

func TestMethodChannel_MalformedCall(t *testing.T) {
	messenger := NewLocalMessenger(testLogger())
	channel := bindHandler(t, messenger, "strict", func(ctx context.Context, call *MethodCall, result Result) {
		t.Fatal("handler must not run for undecodable input")
	})

	reply, err := messenger.Send(context.Background(), "strict", []byte("not a method call"))
	require.NoError(t, err)

	_, err = channel.Codec().DecodeEnvelope(reply)
	var methodErr *MethodError
	require.ErrorAs(t, err, &methodErr)
	assert.Equal(t, CodeMalformedCall, methodErr.Code)
}

func TestMethodChannel_UnboundChannel(t *testing.T) {
	messenger := NewLocalMessenger(testLogger())
	channel := NewMethodChannel("nobody_home", messenger, nil, testLogger())

	_, err := channel.InvokeMethod(context.Background(), MethodGetPlatformVersion, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestMethodChannel_CancelledContext(t *testing.T) {
	_, channel := newTestChannel(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := channel.InvokeMethod(ctx, MethodGetPlatformVersion, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMethodChannel_NilHandler(t *testing.T) {
	channel := NewMethodChannel("x", NewLocalMessenger(testLogger()), nil, testLogger())
	require.Error(t, channel.SetMethodCallHandler(nil))
}
