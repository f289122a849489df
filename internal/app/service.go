package app

import (
	"context"
	"time"

	"forum/api/internal/authz"
	"forum/api/internal/config"
	"forum/api/internal/realtime"
	"forum/api/internal/search"
	"forum/api/internal/session"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

// Session is the authenticated state issued at login and refresh.
type Session struct {
	Token        string
	RefreshToken string
	UserID       uuid.UUID
	Username     string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	AddUser(context.Context, store.User) error
	GetUserByID(context.Context, uuid.UUID) (store.User, error)
	GetUserByUsername(context.Context, string) (store.User, error)
	ListUsers(context.Context) ([]store.User, error)
	UpdateUser(context.Context, store.User) error
	DeleteUser(context.Context, uuid.UUID) error

	AddCategory(context.Context, store.Category) error
	GetCategoryByID(context.Context, uuid.UUID) (store.Category, error)
	GetCategoryByName(context.Context, string) (store.Category, error)
	ListCategories(context.Context) ([]store.Category, error)
	UpdateCategory(context.Context, store.Category) error
	DeleteCategory(context.Context, uuid.UUID) error

	AddTag(context.Context, store.Tag) error
	GetTagByID(context.Context, uuid.UUID) (store.Tag, error)
	GetTagByName(context.Context, string) (store.Tag, error)
	ListTags(context.Context) ([]store.Tag, error)
	UpdateTag(context.Context, store.Tag) error
	DeleteTag(context.Context, uuid.UUID) error

	AddTopic(context.Context, store.Topic) error
	GetTopicByID(context.Context, uuid.UUID) (store.Topic, error)
	ListTopics(context.Context) ([]store.Topic, error)
	ListTopicsByCategory(context.Context, uuid.UUID) ([]store.Topic, error)
	UpdateTopic(context.Context, store.Topic) error
	DeleteTopic(context.Context, uuid.UUID) error

	AddPost(context.Context, store.Post) error
	GetPostByID(context.Context, uuid.UUID) (store.Post, error)
	ListPosts(context.Context) ([]store.Post, error)
	ListPostsByTopic(context.Context, uuid.UUID) ([]store.Post, error)
	UpdatePost(context.Context, store.Post) error
	DeletePost(context.Context, uuid.UUID) error

	AddComment(context.Context, store.Comment) error
	GetCommentByID(context.Context, uuid.UUID) (store.Comment, error)
	ListComments(context.Context) ([]store.Comment, error)
	ListCommentsByPost(context.Context, uuid.UUID) ([]store.Comment, error)
	UpdateComment(context.Context, store.Comment) error
	DeleteComment(context.Context, uuid.UUID) error

	AddPostTag(context.Context, store.PostTag) error
	GetPostTag(context.Context, uuid.UUID, uuid.UUID) (store.PostTag, error)
	ListPostTagsByPost(context.Context, uuid.UUID) ([]store.PostTag, error)
	DeletePostTag(context.Context, uuid.UUID, uuid.UUID) error

	AddVote(context.Context, store.Vote) error
	GetVoteByID(context.Context, uuid.UUID) (store.Vote, error)
	ListVotes(context.Context) ([]store.Vote, error)
	UpdateVote(context.Context, store.Vote) error
	DeleteVote(context.Context, uuid.UUID) error

	Ping(ctx context.Context) error
}

type broadcaster interface {
	Broadcast(event string, payload any)
}

type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, data session.TokenData, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type searchIndex interface {
	Search(q search.Query) search.Response
	IndexTopic(t search.TopicRecord)
	IndexPost(p search.PostRecord)
	IndexComment(c search.CommentRecord)
	DeleteTopic(id string)
	DeletePost(id string)
	DeleteComment(id string)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	hub      broadcaster
	authz    authz.Authorizer
	sessions sessionStore
	search   searchIndex
}

func New(cfg config.Config, dataStore *store.PostgresStore, hub *realtime.Hub, guard authz.Authorizer, sessions *session.RedisStore, searchService *search.Service) *Service {
	s := &Service{
		cfg:   cfg,
		store: dataStore,
		authz: guard,
	}
	if hub != nil {
		s.hub = hub
	}
	if sessions != nil {
		s.sessions = sessions
	}
	if searchService != nil {
		s.search = searchService
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// broadcast pushes a change event to connected clients. Delivery is best
// effort; a failed or absent hub never fails the mutation.
func (s *Service) broadcast(event string, payload any) {
	if s.hub != nil {
		s.hub.Broadcast(event, payload)
	}
}

// --- response payloads ---

func userPayload(user store.User) map[string]any {
	return map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}

func categoryPayload(category store.Category) map[string]any {
	return map[string]any{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
	}
}

func tagPayload(tag store.Tag) map[string]any {
	return map[string]any{
		"id":   tag.ID,
		"name": tag.Name,
	}
}

func topicPayload(topic store.Topic) map[string]any {
	return map[string]any{
		"id":           topic.ID,
		"title":        topic.Title,
		"description":  topic.Description,
		"categoryId":   topic.CategoryID,
		"categoryName": topic.CategoryName,
		"createdAt":    topic.CreatedAt.Format(time.RFC3339),
	}
}

func postPayload(post store.Post) map[string]any {
	return map[string]any{
		"id":             post.ID,
		"content":        post.Content,
		"userId":         post.UserID,
		"username":       post.Username,
		"topicId":        post.TopicID,
		"topicTitle":     post.TopicTitle,
		"createdAt":      post.CreatedAt.Format(time.RFC3339),
		"upvotesCount":   post.UpvotesCount,
		"downvotesCount": post.DownvotesCount,
		"score":          post.Score(),
		"commentsCount":  post.CommentsCount,
	}
}

func commentPayload(comment store.Comment) map[string]any {
	return map[string]any{
		"id":              comment.ID,
		"content":         comment.Content,
		"userId":          comment.UserID,
		"postId":          comment.PostID,
		"parentCommentId": comment.ParentCommentID,
		"createdAt":       comment.CreatedAt.Format(time.RFC3339),
		"upvotesCount":    comment.UpvotesCount,
		"downvotesCount":  comment.DownvotesCount,
		"score":           comment.Score(),
		"repliesCount":    comment.RepliesCount,
	}
}

func postTagPayload(postTag store.PostTag) map[string]any {
	return map[string]any{
		"postId":  postTag.PostID,
		"tagId":   postTag.TagID,
		"tagName": postTag.TagName,
	}
}

func votePayload(vote store.Vote) map[string]any {
	return map[string]any{
		"id":        vote.ID,
		"userId":    vote.UserID,
		"postId":    vote.PostID,
		"commentId": vote.CommentID,
		"voteType":  vote.VoteType,
	}
}
