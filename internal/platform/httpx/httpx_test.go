package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantErr   bool
		wantCalls int32
	}{
		{name: "ok first try", statuses: []int{200}, wantCalls: 1},
		{name: "recovers from 503", statuses: []int{503, 502, 200}, wantCalls: 3},
		{name: "gives up after max attempts", statuses: []int{500, 500, 500, 500}, wantErr: true, wantCalls: 3},
		{name: "no retry on 400", statuses: []int{400, 200}, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer srv.Close()

			ctx := context.Background()
			resp, err := DoWithRetry(ctx, srv.Client(), 3, func() (*http.Request, error) {
				return NewJSONRequest(ctx, http.MethodGet, srv.URL, nil)
			})
			if tt.wantErr {
				require.Error(t, err)
				var se *StatusError
				assert.True(t, errors.As(err, &se))
			} else {
				require.NoError(t, err)
				resp.Body.Close()
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestDoWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoWithRetry(ctx, http.DefaultClient, 3, func() (*http.Request, error) {
		return NewJSONRequest(ctx, http.MethodGet, "http://127.0.0.1:1", nil)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&StatusError{Code: 429}))
	assert.True(t, Retryable(&StatusError{Code: 504}))
	assert.False(t, Retryable(&StatusError{Code: 404}))
	assert.False(t, Retryable(errors.New("plain")))
}
