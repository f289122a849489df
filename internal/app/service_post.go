package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"forum/api/internal/authz"
	"forum/api/internal/search"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

type PostInput struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
	UserID  uuid.UUID `json:"userId"`
	TopicID uuid.UUID `json:"topicId"`
}

func (s *Service) CreatePost(ctx context.Context, actor authz.Actor, input *PostInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create post request can not be null.")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidArgument("Post content is required.")
	}
	if input.UserID == uuid.Nil {
		return nil, invalidArgument("User is required.")
	}
	if err := s.authz.EnsureCurrentUserMatches(actor, input.UserID); err != nil {
		return nil, err
	}
	if input.TopicID == uuid.Nil {
		return nil, invalidArgument("Topic is required.")
	}

	user, userErr := s.store.GetUserByID(ctx, input.UserID)
	topic, topicErr := s.store.GetTopicByID(ctx, input.TopicID)
	if errors.Is(userErr, sql.ErrNoRows) || errors.Is(topicErr, sql.ErrNoRows) {
		return nil, notFound("Can not find user or topic.")
	}
	if userErr != nil {
		return nil, userErr
	}
	if topicErr != nil {
		return nil, topicErr
	}

	post := store.Post{
		ID:         uuid.New(),
		Content:    input.Content,
		UserID:     user.ID,
		Username:   user.Username,
		TopicID:    topic.ID,
		TopicTitle: topic.Title,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AddPost(ctx, post); err != nil {
		return nil, err
	}

	s.indexPost(post)
	payload := postPayload(post)
	s.broadcast("PostCreated", payload)
	return payload, nil
}

func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (map[string]any, error) {
	if postID == uuid.Nil {
		return nil, invalidArgument("Post id can not be empty.")
	}
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Post with id %s not found.", postID))
		}
		return nil, err
	}
	return postPayload(post), nil
}

func (s *Service) ListPosts(ctx context.Context) ([]map[string]any, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return postPayloads(posts), nil
}

func (s *Service) ListPostsByTopic(ctx context.Context, topicID uuid.UUID) ([]map[string]any, error) {
	if topicID == uuid.Nil {
		return nil, invalidArgument("Topic id can not be empty.")
	}
	if _, err := s.store.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Topic with id %s not found.", topicID))
		}
		return nil, err
	}
	posts, err := s.store.ListPostsByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return postPayloads(posts), nil
}

func postPayloads(posts []store.Post) []map[string]any {
	payloads := make([]map[string]any, 0, len(posts))
	for _, post := range posts {
		payloads = append(payloads, postPayload(post))
	}
	return payloads
}

func (s *Service) UpdatePost(ctx context.Context, actor authz.Actor, input *PostInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update post request can not be null.")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidArgument("Post content is required.")
	}

	post, err := s.store.GetPostByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Post with id %s not found.", input.ID))
		}
		return nil, err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, post.UserID, "post"); err != nil {
		return nil, err
	}

	post.Content = input.Content
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	s.indexPost(post)
	payload := postPayload(post)
	s.broadcast("PostUpdated", payload)
	return payload, nil
}

func (s *Service) DeletePost(ctx context.Context, actor authz.Actor, input *PostInput) error {
	if input == nil {
		return invalidArgument("Delete post request can not be null.")
	}

	post, err := s.store.GetPostByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Post with id %s not found.", input.ID))
		}
		return err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, post.UserID, "post"); err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeletePost(post.ID.String())
	}
	s.broadcast("PostDeleted", map[string]any{"id": post.ID})
	return nil
}

func (s *Service) indexPost(post store.Post) {
	if s.search == nil {
		return
	}
	s.search.IndexPost(search.PostRecord{
		ID:       post.ID.String(),
		Content:  post.Content,
		TopicID:  post.TopicID.String(),
		Username: post.Username,
	})
}
