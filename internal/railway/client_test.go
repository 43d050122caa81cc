package railway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExecuteSendsBearerAndBody(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"me":{"id":"u1"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Execute(context.Background(), "tok-123", QueryMe, map[string]any{"x": 1})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "u1", res.Get("data.me.id").String())
	assert.Contains(t, gotBody, `"query"`)
	assert.Equal(t, int64(1), gjson.Get(gotBody, "variables.x").Int())
}

func TestExecuteMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Execute(context.Background(), "tok", QueryMe, nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL)
	_, err := c.Execute(context.Background(), "tok", QueryMe, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestExecuteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Execute(context.Background(), "tok", QueryMe, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecuteReturnsEnvelopeOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Not Authorized"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Execute(context.Background(), "bad-token", QueryMe, nil)
	require.NoError(t, err, "envelope interpretation belongs to the caller")
	assert.Equal(t, "Not Authorized", ErrorMessage(res))
}
