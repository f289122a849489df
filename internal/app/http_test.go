package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forum/api/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(fs *fakeStore) *HTTPServer {
	return NewHTTPServer(newTestService(fs), nil, "*")
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpointAlwaysOK(t *testing.T) {
	server := newTestServer(&fakeStore{})

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestMutationWithoutTokenIsUnauthorized(t *testing.T) {
	fs := &fakeStore{
		addCategoryFn: func(context.Context, store.Category) error {
			t.Fatal("unauthenticated mutation must not reach the store")
			return nil
		},
	}
	server := newTestServer(fs)

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/categories", "", map[string]any{
		"name":        "General",
		"description": "general talk",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestLoginWrongPasswordMapsTo401(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	fs := &fakeStore{
		getUserByUsernameFn: func(context.Context, string) (store.User, error) {
			return store.User{ID: uuid.New(), Username: "alice", PasswordHash: string(hash), Role: "User"}, nil
		},
	}
	server := newTestServer(fs)

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/users/login", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	category := store.Category{ID: uuid.New(), Name: "General", Description: "general talk"}
	fs := &fakeStore{
		getCategoryByIDFn: func(context.Context, uuid.UUID) (store.Category, error) {
			return category, nil
		},
	}
	server := newTestServer(fs)

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/categories/"+category.ID.String(), "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["name"] != "General" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestForbiddenMutationMapsTo403(t *testing.T) {
	fs := &fakeStore{}
	service := newTestService(fs)
	server := NewHTTPServer(service, nil, "*")

	user := store.User{ID: uuid.New(), Username: "carol", Role: "User"}
	session, err := service.issueSession(context.Background(), user)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/categories", session.Token, map[string]any{
		"name":        "General",
		"description": "general talk",
	})
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN code in body, got %s", recorder.Body.String())
	}
}

func TestAuthedMutationRoundTrip(t *testing.T) {
	var saved store.Category
	fs := &fakeStore{
		addCategoryFn: func(_ context.Context, category store.Category) error {
			saved = category
			return nil
		},
	}
	service := newTestService(fs)
	server := NewHTTPServer(service, nil, "*")

	moderator := store.User{ID: uuid.New(), Username: "mod", Role: "Moderator"}
	session, err := service.issueSession(context.Background(), moderator)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	recorder := doJSON(t, server.Handler(), http.MethodPost, "/api/categories", session.Token, map[string]any{
		"name":        "General",
		"description": "general talk",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if saved.Name != "General" {
		t.Fatalf("category did not reach the store: %+v", saved)
	}
}

func TestUnknownIDInPathIsRejected(t *testing.T) {
	server := newTestServer(&fakeStore{})

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/categories/not-a-uuid", "", nil)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", recorder.Code)
	}
}

func TestMissingEntityMapsTo404(t *testing.T) {
	fs := &fakeStore{
		getPostByIDFn: func(context.Context, uuid.UUID) (store.Post, error) {
			return store.Post{}, sql.ErrNoRows
		},
	}
	server := newTestServer(fs)

	recorder := doJSON(t, server.Handler(), http.MethodGet, "/api/posts/"+uuid.NewString(), "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}
