package store

import (
	"time"

	"github.com/google/uuid"
)

const (
	VoteTypeUp   = "UpVote"
	VoteTypeDown = "DownVote"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Email        string
	Role         string
	CreatedAt    time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
}

type Tag struct {
	ID   uuid.UUID
	Name string
}

// Topic keeps its creator as a nullable reference so topics survive
// account deletion. OwnerID reports uuid.Nil for orphaned topics.
type Topic struct {
	ID           uuid.UUID
	Title        string
	Description  string
	CategoryID   uuid.UUID
	CategoryName string
	UserID       *uuid.UUID
	CreatedAt    time.Time
}

func (t Topic) OwnerID() uuid.UUID {
	if t.UserID == nil {
		return uuid.Nil
	}
	return *t.UserID
}

// Post carries the aggregate counts computed by the gateway at read time.
// They are never stored; Score is always derived from the live counts.
type Post struct {
	ID             uuid.UUID
	Content        string
	UserID         uuid.UUID
	Username       string
	TopicID        uuid.UUID
	TopicTitle     string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	UpvotesCount   int
	DownvotesCount int
	CommentsCount  int
}

func (p Post) Score() int {
	return p.UpvotesCount - p.DownvotesCount
}

type Comment struct {
	ID              uuid.UUID
	Content         string
	UserID          uuid.UUID
	PostID          uuid.UUID
	ParentCommentID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	UpvotesCount    int
	DownvotesCount  int
	RepliesCount    int
}

func (c Comment) Score() int {
	return c.UpvotesCount - c.DownvotesCount
}

// PostTag is the (post, tag) join row; TagName is eagerly joined for
// response shaping.
type PostTag struct {
	PostID  uuid.UUID
	TagID   uuid.UUID
	TagName string
}

// Vote targets exactly one of PostID/CommentID; the schema enforces the XOR.
type Vote struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PostID    *uuid.UUID
	CommentID *uuid.UUID
	VoteType  string
	VotedAt   time.Time
}

func (v Vote) NumericValue() int {
	if v.VoteType == VoteTypeUp {
		return 1
	}
	return -1
}
