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

type CommentInput struct {
	ID              uuid.UUID  `json:"id"`
	Content         string     `json:"content"`
	UserID          uuid.UUID  `json:"userId"`
	PostID          uuid.UUID  `json:"postId"`
	ParentCommentID *uuid.UUID `json:"parentCommentId"`
}

func (s *Service) CreateComment(ctx context.Context, actor authz.Actor, input *CommentInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create comment request can not be null.")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidArgument("Comment content is required.")
	}
	if input.UserID == uuid.Nil {
		return nil, invalidArgument("User is required.")
	}
	if err := s.authz.EnsureCurrentUserMatches(actor, input.UserID); err != nil {
		return nil, err
	}
	if input.PostID == uuid.Nil {
		return nil, invalidArgument("Post is required.")
	}

	user, userErr := s.store.GetUserByID(ctx, input.UserID)
	post, postErr := s.store.GetPostByID(ctx, input.PostID)
	if errors.Is(userErr, sql.ErrNoRows) || errors.Is(postErr, sql.ErrNoRows) {
		return nil, notFound("Can not find user or post.")
	}
	if userErr != nil {
		return nil, userErr
	}
	if postErr != nil {
		return nil, postErr
	}

	if input.ParentCommentID != nil {
		parent, err := s.store.GetCommentByID(ctx, *input.ParentCommentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, notFound("Can not find parent comment.")
			}
			return nil, err
		}
		// A reply always stays in its parent's thread.
		if parent.PostID != post.ID {
			return nil, invalidArgument("Parent comment belongs to another post.")
		}
	}

	comment := store.Comment{
		ID:              uuid.New(),
		Content:         input.Content,
		UserID:          user.ID,
		PostID:          post.ID,
		ParentCommentID: input.ParentCommentID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	s.indexComment(comment)
	payload := commentPayload(comment)
	s.broadcast("CommentCreated", payload)
	return payload, nil
}

func (s *Service) GetComment(ctx context.Context, commentID uuid.UUID) (map[string]any, error) {
	if commentID == uuid.Nil {
		return nil, invalidArgument("Comment id can not be empty.")
	}
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Comment with id %s not found.", commentID))
		}
		return nil, err
	}
	return commentPayload(comment), nil
}

func (s *Service) ListComments(ctx context.Context) ([]map[string]any, error) {
	comments, err := s.store.ListComments(ctx)
	if err != nil {
		return nil, err
	}
	return commentPayloads(comments), nil
}

func (s *Service) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]map[string]any, error) {
	if postID == uuid.Nil {
		return nil, invalidArgument("Post id can not be empty.")
	}
	if _, err := s.store.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Post with id %s not found.", postID))
		}
		return nil, err
	}
	comments, err := s.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return commentPayloads(comments), nil
}

func commentPayloads(comments []store.Comment) []map[string]any {
	payloads := make([]map[string]any, 0, len(comments))
	for _, comment := range comments {
		payloads = append(payloads, commentPayload(comment))
	}
	return payloads
}

func (s *Service) UpdateComment(ctx context.Context, actor authz.Actor, input *CommentInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update comment request can not be null.")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidArgument("Comment content is required.")
	}

	comment, err := s.store.GetCommentByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Comment with id %s not found.", input.ID))
		}
		return nil, err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, comment.UserID, "comment"); err != nil {
		return nil, err
	}

	comment.Content = input.Content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.indexComment(comment)
	payload := commentPayload(comment)
	s.broadcast("CommentUpdated", payload)
	return payload, nil
}

func (s *Service) DeleteComment(ctx context.Context, actor authz.Actor, input *CommentInput) error {
	if input == nil {
		return invalidArgument("Delete comment request can not be null.")
	}

	comment, err := s.store.GetCommentByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Comment with id %s not found.", input.ID))
		}
		return err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, comment.UserID, "comment"); err != nil {
		return err
	}

	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteComment(comment.ID.String())
	}
	s.broadcast("CommentDeleted", map[string]any{"id": comment.ID})
	return nil
}

func (s *Service) indexComment(comment store.Comment) {
	if s.search == nil {
		return
	}
	s.search.IndexComment(search.CommentRecord{
		ID:      comment.ID.String(),
		Content: comment.Content,
		PostID:  comment.PostID.String(),
	})
}
