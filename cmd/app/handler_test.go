package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/haerin/internal/blogservice"
)

const blogContent = "<p>This content is long enough to pass.</p>"

type blogData struct {
	Blog blogservice.Blog `json:"blog"`
}

type blogListData struct {
	Blogs      []blogservice.Blog     `json:"blogs"`
	Pagination blogservice.Pagination `json:"pagination"`
}

func TestHealthCheckHandler(t *testing.T) {
	app := &application{config: newTestConfig(), logger: newTestLogger()}
	ts := newTestServer(t, app.routes())

	status, _, env := ts.get(t, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "available", env["message"])

	data := env["data"].(map[string]any)
	assert.Equal(t, "testing", data["environment"])
	assert.Equal(t, "test", data["version"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	app := &application{config: newTestConfig(), logger: newTestLogger()}
	ts := newTestServer(t, app.routes())

	status, _, env := ts.get(t, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, envelope{"success": false, "message": "resource not found"}, env)

	status, _, _ = ts.delete(t, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestRegisterUserHandler(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name       string
		payload    any
		wantStatus int
		wantErrors map[string]any
	}{
		{
			name: "Valid Request",
			payload: map[string]any{
				"name":     "Test User",
				"email":    "testuser@example.com",
				"password": "secret123",
				"bio":      "hello",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "Invalid Email",
			payload: map[string]any{
				"name":     "Test User",
				"email":    "test",
				"password": "secret123",
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: map[string]any{"email": "must be a valid email address"},
		},
		{
			name: "Duplicate Email",
			payload: map[string]any{
				"name":     "Someone Else",
				"email":    "TestUser@example.com",
				"password": "secret123",
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: map[string]any{"email": "a user with this email address already exists"},
		},
		{
			name: "Multi-byte Password Over 72 Bytes",
			payload: map[string]any{
				"name":     "Test User",
				"email":    "another@example.com",
				"password": strings.Repeat("é", 40),
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: map[string]any{"password": "must not be more than 72 bytes long"},
		},
		{
			name:       "Unknown Field",
			payload:    map[string]any{"username": "testuser"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, env := ts.post(t, "/api/auth/register", "", tc.payload)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantStatus == http.StatusCreated, env["success"])

			if tc.wantErrors != nil {
				assert.Equal(t, tc.wantErrors, env["errors"])
			}

			if status == http.StatusCreated {
				data := env["data"].(map[string]any)
				assert.NotEmpty(t, data["token"])

				user := data["user"].(map[string]any)
				assert.Equal(t, "testuser@example.com", user["email"])
				assert.NotContains(t, user, "password")
			}
		})
	}
}

func TestLoginAndProfileHandlers(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	id, _ := ts.registerUser(t, "Test User", "testuser@example.com")

	status, _, env := ts.post(t, "/api/auth/login", "", map[string]any{"email": "testuser@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, env["success"])

	status, _, env = ts.post(t, "/api/auth/login", "", map[string]any{"email": "testuser@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	token := env["data"].(map[string]any)["token"].(string)

	status, _, _ = ts.get(t, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, env = ts.get(t, "/api/auth/me", token)
	require.Equal(t, http.StatusOK, status)
	user := env["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, float64(id), user["id"])
	assert.Equal(t, "Test User", user["name"])

	status, _, env = ts.put(t, "/api/auth/profile", token, map[string]any{"bio": "writes about Go", "avatar": "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"avatar": "must be a valid http(s) URL"}, env["errors"])

	status, _, env = ts.put(t, "/api/auth/profile", token, map[string]any{"bio": "writes about Go"})
	require.Equal(t, http.StatusOK, status)
	user = env["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "writes about Go", user["bio"])
	assert.Equal(t, "Test User", user["name"])

	status, _, env = ts.get(t, "/api/auth/me", token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "writes about Go", env["data"].(map[string]any)["user"].(map[string]any)["bio"])
}

func TestBlogLifecycleHandlers(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, token := ts.registerUser(t, "Owner", "owner@example.com")
	_, otherToken := ts.registerUser(t, "Other", "other@example.com")

	// anonymous users cannot write
	status, _, _ := ts.sendForm(t, http.MethodPost, "/api/blogs", "", map[string]string{"content": blogContent}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// publishing without a cover fails before anything is stored
	status, _, env := ts.sendForm(t, http.MethodPost, "/api/blogs", token, map[string]string{
		"title":   "A proper title",
		"content": blogContent,
		"status":  "published",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"cover_image": "must be provided"}, env["errors"])

	// short content fails the draft path as well
	status, _, env = ts.sendForm(t, http.MethodPost, "/api/blogs", token, map[string]string{
		"content": "<p>too short</p>",
		"status":  "draft",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"content": "must be at least 20 characters"}, env["errors"])

	// a draft without title or cover
	status, _, env = ts.sendForm(t, http.MethodPost, "/api/blogs", token, map[string]string{
		"content": blogContent,
		"status":  "draft",
	}, nil)
	require.Equal(t, http.StatusCreated, status, env)
	assert.Equal(t, "draft saved", env["message"])

	var created blogData
	decodeData(t, env, &created)
	draft := created.Blog
	assert.Equal(t, blogservice.UntitledDraft, draft.Title)
	assert.Nil(t, draft.Cover)

	draftPath := fmt.Sprintf("/api/blogs/%d", draft.ID)

	// drafts are private
	status, _, _ = ts.get(t, draftPath, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = ts.get(t, draftPath, otherToken)
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = ts.get(t, draftPath, token)
	assert.Equal(t, http.StatusOK, status)

	// the draft shows up in the draft list only
	var list blogListData
	status, _, env = ts.get(t, "/api/blogs/mine?status=draft", token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	require.Len(t, list.Blogs, 1)
	assert.Equal(t, draft.ID, list.Blogs[0].ID)
	assert.Equal(t, blogservice.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1}, list.Pagination)

	status, _, _ = ts.get(t, "/api/blogs/mine", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.get(t, "/api/blogs/mine?status=archived", token)
	assert.Equal(t, http.StatusBadRequest, status)

	// publish it with a cover image
	status, _, env = ts.sendForm(t, http.MethodPut, draftPath, token, map[string]string{
		"title":   "Now it is published",
		"content": blogContent,
		"status":  "published",
	}, pngHeader)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, "blog published", env["message"])

	var updated blogData
	decodeData(t, env, &updated)
	require.NotNil(t, updated.Blog.Cover)
	assert.True(t, strings.HasPrefix(updated.Blog.Cover.URL, "http://localhost:4000/media/blog-covers/"))
	assert.NotNil(t, updated.Blog.PublishedAt)

	// the cover is served back
	res, err := ts.Client().Get(ts.URL + "/media/" + updated.Blog.Cover.AssetID)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, pngHeader, body)

	status, _, env = ts.get(t, "/api/blogs/mine?status=draft", token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	assert.Empty(t, list.Blogs)

	status, _, env = ts.get(t, "/api/blogs/mine?status=published", token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	require.Len(t, list.Blogs, 1)
	assert.Equal(t, draft.ID, list.Blogs[0].ID)

	// visible in the public feed and to anyone
	status, _, env = ts.get(t, "/api/blogs?q=published", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	require.Len(t, list.Blogs, 1)
	assert.Equal(t, "Owner", list.Blogs[0].Owner.Name)

	status, _, _ = ts.get(t, draftPath, "")
	assert.Equal(t, http.StatusOK, status)

	// editing without a new cover keeps the image, JSON bodies are accepted too
	status, _, env = ts.put(t, draftPath, token, map[string]any{
		"title":   "Edited title",
		"content": blogContent,
		"status":  "published",
	})
	require.Equal(t, http.StatusOK, status, env)
	decodeData(t, env, &created)
	assert.Equal(t, updated.Blog.Cover.AssetID, created.Blog.Cover.AssetID)

	// other users cannot edit or delete
	status, _, _ = ts.put(t, draftPath, otherToken, map[string]any{"title": "Mine now", "content": blogContent, "status": "draft"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = ts.delete(t, draftPath, otherToken)
	assert.Equal(t, http.StatusNotFound, status)

	// likes
	status, _, env = ts.put(t, draftPath+"/like", otherToken, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, map[string]any{"liked": true, "likes_count": float64(1)}, env["data"])

	status, _, env = ts.put(t, draftPath+"/like", otherToken, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, map[string]any{"liked": false, "likes_count": float64(0)}, env["data"])

	// delete removes it everywhere
	status, _, _ = ts.delete(t, draftPath, token)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, draftPath, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, env = ts.get(t, "/api/blogs/mine", token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &list)
	assert.Empty(t, list.Blogs)
}

func TestCreateBlogHandler_RejectsNonImages(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, token := ts.registerUser(t, "Owner", "owner@example.com")

	status, _, env := ts.sendForm(t, http.MethodPost, "/api/blogs", token, map[string]string{
		"title":   "A proper title",
		"content": blogContent,
		"status":  "published",
	}, []byte("plain text pretending to be an image"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"cover_image": "must be a jpeg, png, gif or webp image"}, env["errors"])
}

func TestBlogHandlers_BadParams(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, token := ts.registerUser(t, "Owner", "owner@example.com")

	testCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "non numeric id", path: "/api/blogs/abc", wantStatus: http.StatusBadRequest},
		{name: "zero id", path: "/api/blogs/0", wantStatus: http.StatusBadRequest},
		{name: "missing blog", path: "/api/blogs/9999", wantStatus: http.StatusNotFound},
		{name: "bad page", path: "/api/blogs?page=x", wantStatus: http.StatusBadRequest},
		{name: "limit too large", path: "/api/blogs?limit=51", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, env := ts.get(t, tc.path, token)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, false, env["success"])
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ts.get(t, "/api/health", "")

	res, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "haerin_test_server_request")
}

func TestGetBlogHandler_ShowsRenamedAuthor(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, token := ts.registerUser(t, "Owner", "owner@example.com")

	status, _, env := ts.sendForm(t, http.MethodPost, "/api/blogs", token, map[string]string{
		"title":   "A proper title",
		"content": blogContent,
		"status":  "published",
	}, pngHeader)
	require.Equal(t, http.StatusCreated, status, env)

	var created blogData
	decodeData(t, env, &created)
	path := fmt.Sprintf("/api/blogs/%d", created.Blog.ID)

	var got blogData
	status, _, env = ts.get(t, path, "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &got)
	assert.Equal(t, "Owner", got.Blog.Owner.Name)

	status, _, _ = ts.put(t, "/api/auth/profile", token, map[string]any{"name": "New Owner"})
	require.Equal(t, http.StatusOK, status)

	status, _, env = ts.get(t, path, "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &got)
	assert.Equal(t, "New Owner", got.Blog.Owner.Name)
}
