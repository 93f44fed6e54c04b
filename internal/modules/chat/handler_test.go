package chat

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
)

func setupRelayTest(t *testing.T, generator Backend, limiter *ClientLimiter) *httptest.Server {
	t.Helper()
	bridge := NewBridge(&fakeBackend{reply: "unused"}, logging.Discard(), Options{})
	r := chi.NewRouter()
	NewHandler(bridge, generator, limiter, logging.Discard()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRelay_Statuses(t *testing.T) {
	srv := setupRelayTest(t, &fakeBackend{reply: "ok"}, nil)

	resp, err := http.Get(srv.URL + "/api/chat")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv.URL+"/api/chat", `{"messages":[]}`).StatusCode)
	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`).StatusCode)
}

func TestRelay_Misconfigured(t *testing.T) {
	srv := setupRelayTest(t, nil, nil)
	resp := postJSON(t, srv.URL+"/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRelay_ForwardsLastTen(t *testing.T) {
	gen := &fakeBackend{reply: "ok"}
	srv := setupRelayTest(t, gen, nil)

	var b bytes.Buffer
	b.WriteString(`{"messages":[`)
	for i := 0; i < 15; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"role":"user","content":"m"}`)
	}
	b.WriteString(`]}`)
	postJSON(t, srv.URL+"/api/chat", b.String())
	assert.Len(t, gen.received, RelayLimit)
}

func TestRelay_ClientLimiter(t *testing.T) {
	srv := setupRelayTest(t, &fakeBackend{reply: "ok"}, NewClientLimiter(0.001, 1))
	body := `{"messages":[{"role":"user","content":"hi"}]}`

	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/chat", body).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(t, srv.URL+"/api/chat", body).StatusCode)
}

func TestRelayClient_AgainstRelay(t *testing.T) {
	gen := &fakeBackend{reply: "We ship in 3 days."}
	srv := setupRelayTest(t, gen, nil)
	client := NewRelayClient(srv.URL+"/api/chat", srv.Client())

	text, err := client.Generate(context.Background(), ask("shipping?"))
	require.NoError(t, err)
	assert.Equal(t, "We ship in 3 days.", text)

	gen.err = ErrRateLimited
	_, err = client.Generate(context.Background(), ask("shipping?"))
	assert.True(t, errors.Is(err, ErrRateLimited))

	gen.err = errors.New("boom")
	_, err = client.Generate(context.Background(), ask("shipping?"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "chat endpoint failed: 500 Gemini request failed")
}

func TestWidget_Send(t *testing.T) {
	backend := &fakeBackend{reply: "Hi there"}
	r := chi.NewRouter()
	NewHandler(NewBridge(backend, logging.Discard(), Options{}), nil, nil, logging.Discard()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hey"}]}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"Hi there"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIsRateLimit(t *testing.T) {
	assert.True(t, isRateLimit(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, isRateLimit(errors.Wrap(&googleapi.Error{Code: http.StatusTooManyRequests}, "generate")))
	assert.True(t, isRateLimit(status.Error(codes.ResourceExhausted, "quota exceeded")))
	assert.False(t, isRateLimit(&googleapi.Error{Code: http.StatusInternalServerError}))
	assert.False(t, isRateLimit(errors.New("nope")))
}
