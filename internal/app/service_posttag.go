package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forum/api/internal/authz"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

type PostTagInput struct {
	PostID uuid.UUID `json:"postId"`
	TagID  uuid.UUID `json:"tagId"`
}

func (s *Service) CreatePostTag(ctx context.Context, actor authz.Actor, input *PostTagInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create post-tag request can not be null.")
	}
	if input.PostID == uuid.Nil || input.TagID == uuid.Nil {
		return nil, invalidArgument("Post id and tag id are required.")
	}

	post, err := s.store.GetPostByID(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Post with id %s not found.", input.PostID))
		}
		return nil, err
	}

	tag, err := s.store.GetTagByID(ctx, input.TagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Tag with id %s not found.", input.TagID))
		}
		return nil, err
	}

	existing, err := s.store.GetPostTag(ctx, post.ID, tag.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && existing.PostID != uuid.Nil {
		return nil, conflict("Post-tag relation already exists.")
	}

	postTag := store.PostTag{PostID: post.ID, TagID: tag.ID, TagName: tag.Name}
	if err := s.store.AddPostTag(ctx, postTag); err != nil {
		return nil, err
	}

	payload := postTagPayload(postTag)
	s.broadcast("PostTagCreated", payload)
	return payload, nil
}

func (s *Service) DeletePostTag(ctx context.Context, actor authz.Actor, input *PostTagInput) error {
	if input == nil {
		return invalidArgument("Delete post-tag request can not be null.")
	}

	postTag, err := s.store.GetPostTag(ctx, input.PostID, input.TagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("Post-tag relation not found.")
		}
		return err
	}

	if err := s.store.DeletePostTag(ctx, postTag.PostID, postTag.TagID); err != nil {
		return err
	}

	s.broadcast("PostTagDeleted", map[string]any{"postId": postTag.PostID, "tagId": postTag.TagID})
	return nil
}

// GetTagsByPost returns the tags attached to a post.
func (s *Service) GetTagsByPost(ctx context.Context, postID uuid.UUID) ([]map[string]any, error) {
	if postID == uuid.Nil {
		return nil, invalidArgument("Post id can not be empty.")
	}
	if _, err := s.store.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Post with id %s not found.", postID))
		}
		return nil, err
	}

	postTags, err := s.store.ListPostTagsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(postTags))
	for _, postTag := range postTags {
		payloads = append(payloads, tagPayload(store.Tag{ID: postTag.TagID, Name: postTag.TagName}))
	}
	return payloads, nil
}
