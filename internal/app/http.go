package app

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"forum/api/internal/auth"
	"forum/api/internal/authz"
	"forum/api/internal/realtime"
	"forum/api/internal/search"

	"github.com/google/uuid"
)

type HTTPServer struct {
	service    *Service
	hub        *realtime.Hub
	corsOrigin string
}

func NewHTTPServer(service *Service, hub *realtime.Hub, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, hub: hub, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if r.URL.Path == "/ws" {
		if s.hub == nil {
			writeError(w, http.StatusServiceUnavailable, "WS_UNAVAILABLE", "Realtime updates not configured", nil)
			return
		}
		s.hub.HandleWS(w, r)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/users/register" {
		var body RegisterUserInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.Register(r.Context(), &body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/users/login" {
		var body LoginInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Login(r.Context(), &body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if session == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password.", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(*session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/users/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if session == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(*session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/users/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		filterType := strings.TrimSpace(r.URL.Query().Get("type"))
		limit := 20
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer", nil)
				return
			}
			limit = parsed
		}
		offset := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "offset must be an integer", nil)
				return
			}
			offset = parsed
		}
		response := s.service.Search(search.Query{
			Text:       q,
			FilterType: search.ResultType(filterType),
			Limit:      limit,
			Offset:     offset,
		})
		writeJSON(w, http.StatusOK, response)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) >= 1 && parts[0] == "api" {
		switch {
		case len(parts) >= 2 && parts[1] == "users":
			s.handleUsers(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "categories":
			s.handleCategories(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "tags":
			s.handleTags(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "topics":
			s.handleTopics(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "posts":
			s.handlePosts(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "comments":
			s.handleComments(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "posttags":
			s.handlePostTags(w, r, parts[2:])
			return
		case len(parts) >= 2 && parts[1] == "votes":
			s.handleVotes(w, r, parts[2:])
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListUsers(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetUser(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
	case http.MethodPut:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body UpdateUserInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.UpdateUser(r.Context(), actor, &body)
		s.respond(w, http.StatusOK, payload, err)
		return
	case http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body DeleteUserInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.respondDeleted(w, s.service.DeleteUser(r.Context(), actor, &body))
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleCategories(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListCategories(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetCategory(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body CategoryInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreateCategory(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdateCategory(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeleteCategory(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleTags(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListTags(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetTag(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body TagInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreateTag(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdateTag(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeleteTag(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleTopics(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListTopics(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetTopic(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
		if len(rest) == 2 && rest[0] == "category" {
			id, ok := parseID(w, rest[1])
			if !ok {
				return
			}
			payload, err := s.service.ListTopicsByCategory(r.Context(), id)
			s.respondList(w, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body TopicInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreateTopic(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdateTopic(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeleteTopic(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handlePosts(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListPosts(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetPost(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
		if len(rest) == 2 && rest[0] == "topic" {
			id, ok := parseID(w, rest[1])
			if !ok {
				return
			}
			payload, err := s.service.ListPostsByTopic(r.Context(), id)
			s.respondList(w, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body PostInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreatePost(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdatePost(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeletePost(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleComments(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListComments(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetComment(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
		if len(rest) == 2 && rest[0] == "post" {
			id, ok := parseID(w, rest[1])
			if !ok {
				return
			}
			payload, err := s.service.ListCommentsByPost(r.Context(), id)
			s.respondList(w, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body CommentInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreateComment(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdateComment(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeleteComment(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handlePostTags(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 2 && rest[0] == "post" {
			id, ok := parseID(w, rest[1])
			if !ok {
				return
			}
			payload, err := s.service.GetTagsByPost(r.Context(), id)
			s.respondList(w, payload, err)
			return
		}
	case http.MethodPost, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body PostTagInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if r.Method == http.MethodPost {
			payload, err := s.service.CreatePostTag(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
			return
		}
		s.respondDeleted(w, s.service.DeletePostTag(r.Context(), actor, &body))
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleVotes(w http.ResponseWriter, r *http.Request, rest []string) {
	switch r.Method {
	case http.MethodGet:
		if len(rest) == 0 {
			payload, err := s.service.ListVotes(r.Context())
			s.respondList(w, payload, err)
			return
		}
		if len(rest) == 1 {
			id, ok := parseID(w, rest[0])
			if !ok {
				return
			}
			payload, err := s.service.GetVote(r.Context(), id)
			s.respond(w, http.StatusOK, payload, err)
			return
		}
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if len(rest) != 0 {
			break
		}
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		var body VoteInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			payload, err := s.service.CreateVote(r.Context(), actor, &body)
			s.respond(w, http.StatusCreated, payload, err)
		case http.MethodPut:
			payload, err := s.service.UpdateVote(r.Context(), actor, &body)
			s.respond(w, http.StatusOK, payload, err)
		case http.MethodDelete:
			s.respondDeleted(w, s.service.DeleteVote(r.Context(), actor, &body))
		}
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) respond(w http.ResponseWriter, status int, payload map[string]any, err error) {
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, status, payload)
}

func (s *HTTPServer) respondList(w http.ResponseWriter, payload []map[string]any, err error) {
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payload})
}

func (s *HTTPServer) respondDeleted(w http.ResponseWriter, err error) {
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"username":     session.Username,
		"role":         session.Role,
		"expiresAt":    session.ExpiresAt.Format(time.RFC3339),
	}
}

// requireActor resolves the bearer token to an authenticated actor. Every
// mutation goes through here; reads stay anonymous.
func (s *HTTPServer) requireActor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return authz.Actor{}, false
	}
	actor, err := s.service.ActorFromToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return authz.Actor{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Token lookup failed", nil)
		return authz.Actor{}, false
	}
	return actor, true
}

func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "id must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if r.URL.Path != "/ws" {
			setCORSHeaders(writer.Header(), s.corsOrigin)
			writer.Header().Set("X-Request-ID", requestID)
		}

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade pass through the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var authzErr *authz.Error
	if errors.As(err, &authzErr) {
		return http.StatusForbidden, "FORBIDDEN", authzErr.Message, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
