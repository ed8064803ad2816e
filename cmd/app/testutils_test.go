package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/haerin/internal/blogservice"
	"github.com/sushihentaime/haerin/internal/common"
	"github.com/sushihentaime/haerin/internal/mediaservice"
	"github.com/sushihentaime/haerin/internal/metrics"
	"github.com/sushihentaime/haerin/internal/userservice"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func newTestConfig() *Config {
	return &Config{
		Environment:    "testing",
		Version:        "test",
		TrustedOrigins: []string{"http://example.com"},
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newTestApplication wires the services against a postgres container. The broker is mocked.
func newTestApplication(t *testing.T) (*application, *sql.DB, *common.MockProducer) {
	db := common.TestDB("file://../../migrations", t)
	logger := newTestLogger()
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	mb := new(common.MockProducer)
	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	media, err := mediaservice.NewDiskStore(t.TempDir(), "http://localhost:4000")
	require.NoError(t, err)

	m, reg := metrics.NewTestManagerAndRegistry()

	app := &application{
		config:      newTestConfig(),
		logger:      logger,
		userService: userservice.NewUserService(db, mb, cache, userservice.NewTokenIssuer("test-secret", time.Hour), logger),
		blogService: blogservice.NewBlogService(db, media, mb, cache, m, logger),
		media:       media,
		metrics:     m,
		registry:    reg,
	}

	return app, db, mb
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatalf("could not decode %q: %v", responseBody, err)
	}

	return res.StatusCode, res.Header, envelope
}

// decodeData re-decodes the data member of a response into dst.
func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()

	b, err := json.Marshal(env["data"])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

func (ts *testServer) do(t *testing.T, method, path, token, contentType string, body io.Reader) (int, http.Header, envelope) {
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) sendJSON(t *testing.T, method, path, token string, data any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, method, path, token, "application/json", bytes.NewReader(jsonPayload))
}

func (ts *testServer) post(t *testing.T, path, token string, data any) (int, http.Header, envelope) {
	return ts.sendJSON(t, http.MethodPost, path, token, data)
}

func (ts *testServer) put(t *testing.T, path, token string, data any) (int, http.Header, envelope) {
	return ts.sendJSON(t, http.MethodPut, path, token, data)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, "", nil)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, "", nil)
}

// sendForm sends a multipart blog form. cover may be nil.
func (ts *testServer) sendForm(t *testing.T, method, path, token string, fields map[string]string, cover []byte) (int, http.Header, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if cover != nil {
		fw, err := mw.CreateFormFile("coverImage", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(cover)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return ts.do(t, method, path, token, mw.FormDataContentType(), &buf)
}

// registerUser registers through the API and returns the user id and token.
func (ts *testServer) registerUser(t *testing.T, name, email string) (int64, string) {
	t.Helper()

	status, _, env := ts.post(t, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env)

	var data struct {
		User  userservice.User `json:"user"`
		Token string           `json:"token"`
	}
	decodeData(t, env, &data)

	return data.User.ID, data.Token
}
