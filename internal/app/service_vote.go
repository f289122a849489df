package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"forum/api/internal/authz"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

type VoteInput struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	PostID    *uuid.UUID `json:"postId"`
	CommentID *uuid.UUID `json:"commentId"`
	VoteType  string     `json:"voteType"`
}

func validVoteType(voteType string) bool {
	return voteType == store.VoteTypeUp || voteType == store.VoteTypeDown
}

func (s *Service) CreateVote(ctx context.Context, actor authz.Actor, input *VoteInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create vote request can not be null.")
	}
	if input.UserID == uuid.Nil {
		return nil, invalidArgument("User is required.")
	}
	if err := s.authz.EnsureCurrentUserMatches(actor, input.UserID); err != nil {
		return nil, err
	}
	if !validVoteType(input.VoteType) {
		return nil, invalidArgument("Vote type must be UpVote or DownVote.")
	}
	// Exactly one target: a vote for both a post and a comment is as
	// malformed as a vote for neither.
	if (input.PostID == nil) == (input.CommentID == nil) {
		return nil, invalidArgument("Vote must be for a post or a comment.")
	}

	user, err := s.store.GetUserByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("User with id %s not found.", input.UserID))
		}
		return nil, err
	}

	vote := store.Vote{
		ID:       uuid.New(),
		UserID:   user.ID,
		VoteType: input.VoteType,
		VotedAt:  time.Now().UTC(),
	}
	if input.PostID != nil {
		post, err := s.store.GetPostByID(ctx, *input.PostID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, notFound(fmt.Sprintf("Post with id %s not found.", *input.PostID))
			}
			return nil, err
		}
		postID := post.ID
		vote.PostID = &postID
	}
	if input.CommentID != nil {
		comment, err := s.store.GetCommentByID(ctx, *input.CommentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, notFound(fmt.Sprintf("Comment with id %s not found.", *input.CommentID))
			}
			return nil, err
		}
		commentID := comment.ID
		vote.CommentID = &commentID
	}

	if err := s.store.AddVote(ctx, vote); err != nil {
		return nil, err
	}

	payload := votePayload(vote)
	s.broadcast("VoteCreated", payload)
	return payload, nil
}

func (s *Service) GetVote(ctx context.Context, voteID uuid.UUID) (map[string]any, error) {
	if voteID == uuid.Nil {
		return nil, invalidArgument("Vote id can not be empty.")
	}
	vote, err := s.store.GetVoteByID(ctx, voteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Vote with id %s not found.", voteID))
		}
		return nil, err
	}
	return votePayload(vote), nil
}

func (s *Service) ListVotes(ctx context.Context) ([]map[string]any, error) {
	votes, err := s.store.ListVotes(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(votes))
	for _, vote := range votes {
		payloads = append(payloads, votePayload(vote))
	}
	return payloads, nil
}

func (s *Service) UpdateVote(ctx context.Context, actor authz.Actor, input *VoteInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update vote request can not be null.")
	}
	if !validVoteType(input.VoteType) {
		return nil, invalidArgument("Vote type must be UpVote or DownVote.")
	}

	vote, err := s.store.GetVoteByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Vote with id %s not found.", input.ID))
		}
		return nil, err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, vote.UserID, "vote"); err != nil {
		return nil, err
	}

	vote.VoteType = input.VoteType
	vote.VotedAt = time.Now().UTC()
	if err := s.store.UpdateVote(ctx, vote); err != nil {
		return nil, err
	}

	payload := votePayload(vote)
	s.broadcast("VoteUpdated", payload)
	return payload, nil
}

func (s *Service) DeleteVote(ctx context.Context, actor authz.Actor, input *VoteInput) error {
	if input == nil {
		return invalidArgument("Delete vote request can not be null.")
	}

	vote, err := s.store.GetVoteByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Vote with id %s not found.", input.ID))
		}
		return err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, vote.UserID, "vote"); err != nil {
		return err
	}

	if err := s.store.DeleteVote(ctx, vote.ID); err != nil {
		return err
	}

	s.broadcast("VoteDeleted", map[string]any{"id": vote.ID})
	return nil
}
