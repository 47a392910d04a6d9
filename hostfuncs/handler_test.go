package hostfuncs

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONHandler(t *testing.T) {
	type greetReq struct {
		Name string `json:"name"`
	}
	type greetResp struct {
		Message string `json:"message"`
	}

	handler := NewJSONHandler(func(ctx context.Context, req greetReq) (greetResp, error) {
		if req.Name == "" {
			return greetResp{}, stdErrors.New("name is required")
		}
		return greetResp{Message: "Hello, " + req.Name}, nil
	})

	t.Run("success", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte(`{"name":"waPC"}`))
		require.NoError(t, err)

		var resp greetResp
		require.NoError(t, json.Unmarshal(respBytes, &resp))
		assert.Equal(t, "Hello, waPC", resp.Message)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := handler(context.Background(), []byte(`{invalid`))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), "failed to unmarshal request")
	})

	t.Run("handler error", func(t *testing.T) {
		_, err := handler(context.Background(), []byte(`{}`))
		assert.EqualError(t, err, "name is required")
	})
}

func TestHostCallHandler_ToByteHandler(t *testing.T) {
	var got []string
	h := HostCallHandler(func(_ context.Context, b, ns, op string, payload []byte) ([]byte, error) {
		got = []string{b, ns, op, string(payload)}
		return nil, nil
	}).toByteHandler()

	_, err := h(NewHostContext(context.Background(), pingKey), []byte("p"))
	require.NoError(t, err)
	assert.Equal(t, []string{"myBinding", "sample:namespace", "Ping", "p"}, got)
}
