package hmsservices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCodecs() []MethodCodec {
	return []MethodCodec{StandardMethodCodec{}, JSONMethodCodec{}}
}

func TestCodecByName(t *testing.T) {
	codec, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecStandard, codec.Name())

	codec, err = CodecByName(CodecJSON)
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, codec.Name())

	_, err = CodecByName("xml")
	require.Error(t, err)
}

func TestCodec_MethodCall(t *testing.T) {
	for _, codec := range allCodecs() {
		t.Run(codec.Name(), func(t *testing.T) {
			t.Run("without arguments", func(t *testing.T) {
				data, err := codec.EncodeMethodCall(&MethodCall{Method: MethodGetPlatformVersion})
				require.NoError(t, err)

				call, err := codec.DecodeMethodCall(data)
				require.NoError(t, err)
				assert.Equal(t, MethodGetPlatformVersion, call.Method)
				assert.Nil(t, call.Arguments)
			})

			t.Run("typed arguments become generic values", func(t *testing.T) {
				data, err := codec.EncodeMethodCall(&MethodCall{
					Method: "track",
					Arguments: map[string]any{
						"count": 3,
						"tags":  []string{"a", "b"},
						"ok":    true,
					},
				})
				require.NoError(t, err)

				call, err := codec.DecodeMethodCall(data)
				require.NoError(t, err)
				assert.Equal(t, map[string]any{
					"count": float64(3),
					"tags":  []any{"a", "b"},
					"ok":    true,
				}, call.Arguments)
			})

			t.Run("empty method name survives", func(t *testing.T) {
				data, err := codec.EncodeMethodCall(&MethodCall{Method: ""})
				require.NoError(t, err)

				call, err := codec.DecodeMethodCall(data)
				require.NoError(t, err)
				assert.Equal(t, "", call.Method)
			})
		})
	}
}

func TestCodec_DecodeMalformedCall(t *testing.T) {
	cases := map[string][]byte{
		"garbage": []byte("not a method call"),
		"empty":   {},
	}
	for _, codec := range allCodecs() {
		for name, data := range cases {
			t.Run(codec.Name()+"/"+name, func(t *testing.T) {
				_, err := codec.DecodeMethodCall(data)
				require.Error(t, err)
			})
		}
	}

	t.Run("json without method", func(t *testing.T) {
		_, err := JSONMethodCodec{}.DecodeMethodCall([]byte(`{"args": 1}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "method")
	})
}

func TestCodec_Envelopes(t *testing.T) {
	for _, codec := range allCodecs() {
		t.Run(codec.Name(), func(t *testing.T) {
			t.Run("success", func(t *testing.T) {
				data, err := codec.EncodeSuccessEnvelope("iOS 17.4")
				require.NoError(t, err)
				require.NotEmpty(t, data)

				result, err := codec.DecodeEnvelope(data)
				require.NoError(t, err)
				assert.Equal(t, "iOS 17.4", result)
			})

			t.Run("nil success is not empty", func(t *testing.T) {
				data, err := codec.EncodeSuccessEnvelope(nil)
				require.NoError(t, err)
				require.NotEmpty(t, data)

				result, err := codec.DecodeEnvelope(data)
				require.NoError(t, err)
				assert.Nil(t, result)
			})

			t.Run("error", func(t *testing.T) {
				data, err := codec.EncodeErrorEnvelope("unavailable", "service down", map[string]any{"retry": true})
				require.NoError(t, err)

				_, err = codec.DecodeEnvelope(data)
				var methodErr *MethodError
				require.ErrorAs(t, err, &methodErr)
				assert.Equal(t, "unavailable", methodErr.Code)
				assert.Equal(t, "service down", methodErr.Message)
				assert.Equal(t, map[string]any{"retry": true}, methodErr.Details)
			})

			t.Run("empty reply means not implemented", func(t *testing.T) {
				_, err := codec.DecodeEnvelope(nil)
				assert.ErrorIs(t, err, ErrNotImplemented)
			})
		})
	}

	t.Run("json envelope with wrong length", func(t *testing.T) {
		_, err := JSONMethodCodec{}.DecodeEnvelope([]byte(`["a", "b"]`))
		require.Error(t, err)
	})
}
