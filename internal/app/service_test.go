package app

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"forum/api/internal/authz"
	"forum/api/internal/config"
	"forum/api/internal/session"
	"forum/api/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	addUserFn           func(context.Context, store.User) error
	getUserByIDFn       func(context.Context, uuid.UUID) (store.User, error)
	getUserByUsernameFn func(context.Context, string) (store.User, error)

	addCategoryFn       func(context.Context, store.Category) error
	getCategoryByIDFn   func(context.Context, uuid.UUID) (store.Category, error)
	getCategoryByNameFn func(context.Context, string) (store.Category, error)
	updateCategoryFn    func(context.Context, store.Category) error
	deleteCategoryFn    func(context.Context, uuid.UUID) error

	addTagFn       func(context.Context, store.Tag) error
	getTagByIDFn   func(context.Context, uuid.UUID) (store.Tag, error)
	getTagByNameFn func(context.Context, string) (store.Tag, error)

	addTopicFn     func(context.Context, store.Topic) error
	getTopicByIDFn func(context.Context, uuid.UUID) (store.Topic, error)

	addPostFn     func(context.Context, store.Post) error
	getPostByIDFn func(context.Context, uuid.UUID) (store.Post, error)
	updatePostFn  func(context.Context, store.Post) error
	deletePostFn  func(context.Context, uuid.UUID) error

	addCommentFn     func(context.Context, store.Comment) error
	getCommentByIDFn func(context.Context, uuid.UUID) (store.Comment, error)

	addPostTagFn func(context.Context, store.PostTag) error
	getPostTagFn func(context.Context, uuid.UUID, uuid.UUID) (store.PostTag, error)

	addVoteFn     func(context.Context, store.Vote) error
	getVoteByIDFn func(context.Context, uuid.UUID) (store.Vote, error)
	updateVoteFn  func(context.Context, store.Vote) error
	deleteVoteFn  func(context.Context, uuid.UUID) error
}

func (f *fakeStore) AddUser(ctx context.Context, user store.User) error {
	if f.addUserFn != nil {
		return f.addUserFn(ctx, user)
	}
	return nil
}
func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, id)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (store.User, error) {
	if f.getUserByUsernameFn != nil {
		return f.getUserByUsernameFn(ctx, username)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) ListUsers(context.Context) ([]store.User, error) { return nil, nil }
func (f *fakeStore) UpdateUser(context.Context, store.User) error    { return nil }
func (f *fakeStore) DeleteUser(context.Context, uuid.UUID) error     { return nil }

func (f *fakeStore) AddCategory(ctx context.Context, category store.Category) error {
	if f.addCategoryFn != nil {
		return f.addCategoryFn(ctx, category)
	}
	return nil
}
func (f *fakeStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (store.Category, error) {
	if f.getCategoryByIDFn != nil {
		return f.getCategoryByIDFn(ctx, id)
	}
	return store.Category{}, sql.ErrNoRows
}
func (f *fakeStore) GetCategoryByName(ctx context.Context, name string) (store.Category, error) {
	if f.getCategoryByNameFn != nil {
		return f.getCategoryByNameFn(ctx, name)
	}
	return store.Category{}, sql.ErrNoRows
}
func (f *fakeStore) ListCategories(context.Context) ([]store.Category, error) { return nil, nil }
func (f *fakeStore) UpdateCategory(ctx context.Context, category store.Category) error {
	if f.updateCategoryFn != nil {
		return f.updateCategoryFn(ctx, category)
	}
	return nil
}
func (f *fakeStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if f.deleteCategoryFn != nil {
		return f.deleteCategoryFn(ctx, id)
	}
	return nil
}

func (f *fakeStore) AddTag(ctx context.Context, tag store.Tag) error {
	if f.addTagFn != nil {
		return f.addTagFn(ctx, tag)
	}
	return nil
}
func (f *fakeStore) GetTagByID(ctx context.Context, id uuid.UUID) (store.Tag, error) {
	if f.getTagByIDFn != nil {
		return f.getTagByIDFn(ctx, id)
	}
	return store.Tag{}, sql.ErrNoRows
}
func (f *fakeStore) GetTagByName(ctx context.Context, name string) (store.Tag, error) {
	if f.getTagByNameFn != nil {
		return f.getTagByNameFn(ctx, name)
	}
	return store.Tag{}, sql.ErrNoRows
}
func (f *fakeStore) ListTags(context.Context) ([]store.Tag, error) { return nil, nil }
func (f *fakeStore) UpdateTag(context.Context, store.Tag) error    { return nil }
func (f *fakeStore) DeleteTag(context.Context, uuid.UUID) error    { return nil }

func (f *fakeStore) AddTopic(ctx context.Context, topic store.Topic) error {
	if f.addTopicFn != nil {
		return f.addTopicFn(ctx, topic)
	}
	return nil
}
func (f *fakeStore) GetTopicByID(ctx context.Context, id uuid.UUID) (store.Topic, error) {
	if f.getTopicByIDFn != nil {
		return f.getTopicByIDFn(ctx, id)
	}
	return store.Topic{}, sql.ErrNoRows
}
func (f *fakeStore) ListTopics(context.Context) ([]store.Topic, error) { return nil, nil }
func (f *fakeStore) ListTopicsByCategory(context.Context, uuid.UUID) ([]store.Topic, error) {
	return nil, nil
}
func (f *fakeStore) UpdateTopic(context.Context, store.Topic) error { return nil }
func (f *fakeStore) DeleteTopic(context.Context, uuid.UUID) error   { return nil }

func (f *fakeStore) AddPost(ctx context.Context, post store.Post) error {
	if f.addPostFn != nil {
		return f.addPostFn(ctx, post)
	}
	return nil
}
func (f *fakeStore) GetPostByID(ctx context.Context, id uuid.UUID) (store.Post, error) {
	if f.getPostByIDFn != nil {
		return f.getPostByIDFn(ctx, id)
	}
	return store.Post{}, sql.ErrNoRows
}
func (f *fakeStore) ListPosts(context.Context) ([]store.Post, error) { return nil, nil }
func (f *fakeStore) ListPostsByTopic(context.Context, uuid.UUID) ([]store.Post, error) {
	return nil, nil
}
func (f *fakeStore) UpdatePost(ctx context.Context, post store.Post) error {
	if f.updatePostFn != nil {
		return f.updatePostFn(ctx, post)
	}
	return nil
}
func (f *fakeStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	if f.deletePostFn != nil {
		return f.deletePostFn(ctx, id)
	}
	return nil
}

func (f *fakeStore) AddComment(ctx context.Context, comment store.Comment) error {
	if f.addCommentFn != nil {
		return f.addCommentFn(ctx, comment)
	}
	return nil
}
func (f *fakeStore) GetCommentByID(ctx context.Context, id uuid.UUID) (store.Comment, error) {
	if f.getCommentByIDFn != nil {
		return f.getCommentByIDFn(ctx, id)
	}
	return store.Comment{}, sql.ErrNoRows
}
func (f *fakeStore) ListComments(context.Context) ([]store.Comment, error) { return nil, nil }
func (f *fakeStore) ListCommentsByPost(context.Context, uuid.UUID) ([]store.Comment, error) {
	return nil, nil
}
func (f *fakeStore) UpdateComment(context.Context, store.Comment) error { return nil }
func (f *fakeStore) DeleteComment(context.Context, uuid.UUID) error     { return nil }

func (f *fakeStore) AddPostTag(ctx context.Context, postTag store.PostTag) error {
	if f.addPostTagFn != nil {
		return f.addPostTagFn(ctx, postTag)
	}
	return nil
}
func (f *fakeStore) GetPostTag(ctx context.Context, postID, tagID uuid.UUID) (store.PostTag, error) {
	if f.getPostTagFn != nil {
		return f.getPostTagFn(ctx, postID, tagID)
	}
	return store.PostTag{}, sql.ErrNoRows
}
func (f *fakeStore) ListPostTagsByPost(context.Context, uuid.UUID) ([]store.PostTag, error) {
	return nil, nil
}
func (f *fakeStore) DeletePostTag(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) AddVote(ctx context.Context, vote store.Vote) error {
	if f.addVoteFn != nil {
		return f.addVoteFn(ctx, vote)
	}
	return nil
}
func (f *fakeStore) GetVoteByID(ctx context.Context, id uuid.UUID) (store.Vote, error) {
	if f.getVoteByIDFn != nil {
		return f.getVoteByIDFn(ctx, id)
	}
	return store.Vote{}, sql.ErrNoRows
}
func (f *fakeStore) ListVotes(context.Context) ([]store.Vote, error) { return nil, nil }
func (f *fakeStore) UpdateVote(ctx context.Context, vote store.Vote) error {
	if f.updateVoteFn != nil {
		return f.updateVoteFn(ctx, vote)
	}
	return nil
}
func (f *fakeStore) DeleteVote(ctx context.Context, id uuid.UUID) error {
	if f.deleteVoteFn != nil {
		return f.deleteVoteFn(ctx, id)
	}
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type fakeHub struct {
	events   []string
	payloads []any
}

func (f *fakeHub) Broadcast(event string, payload any) {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
}

type fakeSessions struct {
	saved   map[string]session.TokenData
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{saved: make(map[string]session.TokenData)}
}

func (f *fakeSessions) SaveRefreshSession(_ context.Context, tokenHash string, data session.TokenData, _ time.Time) error {
	f.saved[tokenHash] = data
	return nil
}

func (f *fakeSessions) LookupRefreshSession(_ context.Context, tokenHash string) (session.TokenData, error) {
	data, ok := f.saved[tokenHash]
	if !ok {
		return session.TokenData{}, session.ErrNotFound
	}
	return data, nil
}

func (f *fakeSessions) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.saved, tokenHash)
	f.revoked = append(f.revoked, tokenHash)
	return nil
}

func newTestService(fs *fakeStore) *Service {
	return &Service{
		cfg: config.Config{
			JWTSecret:  "test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		store: fs,
		authz: authz.Guard{},
	}
}

func moderatorActor() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: authz.RoleModerator, Known: true}
}

func userActor(id uuid.UUID) authz.Actor {
	return authz.Actor{UserID: id, Role: authz.RoleUser, Known: true}
}

func requireDomainError(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	domainErr, ok := err.(*DomainError)
	if !ok {
		t.Fatalf("expected *DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
	return domainErr
}

func requireForbidden(t *testing.T, err error) *authz.Error {
	t.Helper()
	authzErr, ok := err.(*authz.Error)
	if !ok {
		t.Fatalf("expected *authz.Error, got %T: %v", err, err)
	}
	return authzErr
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	fs := &fakeStore{
		addCategoryFn: func(context.Context, store.Category) error {
			t.Fatal("blank category must not reach the store")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.CreateCategory(context.Background(), moderatorActor(), &CategoryInput{Name: "   ", Description: "general talk"})
	domainErr := requireDomainError(t, err, "INVALID_ARGUMENT")
	if domainErr.Message != "Category name is required." {
		t.Fatalf("unexpected message: %s", domainErr.Message)
	}
}

func TestCreateCategoryRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	existing := store.Category{ID: uuid.New(), Name: "General", Description: "general talk"}
	fs := &fakeStore{
		getCategoryByNameFn: func(_ context.Context, name string) (store.Category, error) {
			if strings.EqualFold(name, existing.Name) {
				return existing, nil
			}
			return store.Category{}, sql.ErrNoRows
		},
		addCategoryFn: func(context.Context, store.Category) error {
			t.Fatal("duplicate category must not reach the store")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.CreateCategory(context.Background(), moderatorActor(), &CategoryInput{Name: "GENERAL", Description: "general talk"})
	requireDomainError(t, err, "CONFLICT")
}

func TestCreateCategoryRequiresModeratorOrAdmin(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.CreateCategory(context.Background(), userActor(uuid.New()), &CategoryInput{Name: "General", Description: "general talk"})
	authzErr := requireForbidden(t, err)
	if authzErr.Message != "Only moderator or admin can manage categories." {
		t.Fatalf("unexpected message: %s", authzErr.Message)
	}
}

func TestGetCategoryRejectsEmptyIDBeforeStore(t *testing.T) {
	fs := &fakeStore{
		getCategoryByIDFn: func(context.Context, uuid.UUID) (store.Category, error) {
			t.Fatal("empty id must not reach the store")
			return store.Category{}, nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.GetCategory(context.Background(), uuid.Nil)
	requireDomainError(t, err, "INVALID_ARGUMENT")
}

func TestUpdateCategoryNotFoundLeavesStoreUntouched(t *testing.T) {
	fs := &fakeStore{
		updateCategoryFn: func(context.Context, store.Category) error {
			t.Fatal("missing category must not be updated")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.UpdateCategory(context.Background(), moderatorActor(), &CategoryInput{ID: uuid.New(), Name: "General", Description: "general talk"})
	requireDomainError(t, err, "NOT_FOUND")
}

func TestDeleteCategoryBroadcastsKeyOnly(t *testing.T) {
	category := store.Category{ID: uuid.New(), Name: "General", Description: "general talk"}
	fs := &fakeStore{
		getCategoryByIDFn: func(context.Context, uuid.UUID) (store.Category, error) {
			return category, nil
		},
	}
	hub := &fakeHub{}
	svc := newTestService(fs)
	svc.hub = hub

	if err := svc.DeleteCategory(context.Background(), moderatorActor(), &CategoryInput{ID: category.ID}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(hub.events) != 1 || hub.events[0] != "CategoryDeleted" {
		t.Fatalf("expected CategoryDeleted broadcast, got %v", hub.events)
	}
	payload, ok := hub.payloads[0].(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload type %T", hub.payloads[0])
	}
	if len(payload) != 1 || payload["id"] != category.ID {
		t.Fatalf("delete payload must carry only the key, got %v", payload)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	fs := &fakeStore{
		getUserByUsernameFn: func(_ context.Context, username string) (store.User, error) {
			if username == "alice" {
				return store.User{ID: uuid.New(), Username: "alice"}, nil
			}
			return store.User{}, sql.ErrNoRows
		},
		addUserFn: func(context.Context, store.User) error {
			t.Fatal("duplicate user must not reach the store")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.Register(context.Background(), &RegisterUserInput{Username: "alice", Password: "s3cret", Email: "alice@example.com"})
	domainErr := requireDomainError(t, err, "CONFLICT")
	if !strings.Contains(domainErr.Message, "alice") {
		t.Fatalf("conflict message should name the username, got %s", domainErr.Message)
	}
}

func TestRegisterHashesPasswordAndAssignsUserRole(t *testing.T) {
	var saved store.User
	fs := &fakeStore{
		addUserFn: func(_ context.Context, user store.User) error {
			saved = user
			return nil
		},
	}
	svc := newTestService(fs)

	payload, err := svc.Register(context.Background(), &RegisterUserInput{Username: "bob", Password: "s3cret", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if saved.PasswordHash == "s3cret" || saved.PasswordHash == "" {
		t.Fatal("password must be stored as a hash")
	}
	if bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("s3cret")) != nil {
		t.Fatal("stored hash does not verify the original password")
	}
	if saved.Role != string(authz.RoleUser) {
		t.Fatalf("expected User role, got %s", saved.Role)
	}
	if _, exposed := payload["passwordHash"]; exposed {
		t.Fatal("payload must not expose the password hash")
	}
}

func TestLoginWrongPasswordYieldsNoSession(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	fs := &fakeStore{
		getUserByUsernameFn: func(context.Context, string) (store.User, error) {
			return store.User{ID: uuid.New(), Username: "alice", PasswordHash: string(hash), Role: "User"}, nil
		},
	}
	svc := newTestService(fs)

	issued, err := svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "wrong"})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if issued != nil {
		t.Fatal("wrong password must not produce a session")
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	fs := &fakeStore{
		getUserByUsernameFn: func(context.Context, string) (store.User, error) {
			return store.User{ID: userID, Username: "alice", PasswordHash: string(hash), Role: "Moderator"}, nil
		},
	}
	svc := newTestService(fs)

	issued, err := svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if issued == nil {
		t.Fatal("expected a session")
	}
	actor, err := svc.ActorFromToken(issued.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if actor.UserID != userID || actor.Role != authz.RoleModerator || !actor.Known {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestLoginSavesRefreshSessionAndRefreshRotatesIt(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	user := store.User{ID: userID, Username: "alice", PasswordHash: string(hash), Role: "User"}
	fs := &fakeStore{
		getUserByUsernameFn: func(context.Context, string) (store.User, error) { return user, nil },
		getUserByIDFn:       func(context.Context, uuid.UUID) (store.User, error) { return user, nil },
	}
	sessions := newFakeSessions()
	svc := newTestService(fs)
	svc.sessions = sessions

	issued, err := svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if issued.RefreshToken == "" {
		t.Fatal("expected a refresh token")
	}
	if len(sessions.saved) != 1 {
		t.Fatalf("expected one saved refresh session, got %d", len(sessions.saved))
	}

	renewed, err := svc.Refresh(context.Background(), issued.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if renewed == nil {
		t.Fatal("expected a renewed session")
	}
	if renewed.RefreshToken == issued.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("old refresh session must be revoked, got %v", sessions.revoked)
	}

	// A rotated token is spent.
	replayed, err := svc.Refresh(context.Background(), issued.RefreshToken)
	if err != nil {
		t.Fatalf("replay refresh returned error: %v", err)
	}
	if replayed != nil {
		t.Fatal("spent refresh token must not produce a session")
	}
}

func TestRefreshWithoutSessionStoreYieldsNoSession(t *testing.T) {
	svc := newTestService(&fakeStore{})

	issued, err := svc.Refresh(context.Background(), "anything")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if issued != nil {
		t.Fatal("refresh without a session store must not produce a session")
	}
}

func TestUpdatePostRequiresOwnershipUnlessModerator(t *testing.T) {
	ownerID := uuid.New()
	post := store.Post{ID: uuid.New(), Content: "original", UserID: ownerID, Username: "owner"}
	updated := 0
	fs := &fakeStore{
		getPostByIDFn: func(context.Context, uuid.UUID) (store.Post, error) { return post, nil },
		updatePostFn: func(context.Context, store.Post) error {
			updated++
			return nil
		},
	}
	svc := newTestService(fs)
	input := &PostInput{ID: post.ID, Content: "edited"}

	_, err := svc.UpdatePost(context.Background(), userActor(uuid.New()), input)
	authzErr := requireForbidden(t, err)
	if authzErr.Message != "You can modify only your own post." {
		t.Fatalf("unexpected message: %s", authzErr.Message)
	}
	if updated != 0 {
		t.Fatal("forbidden update must not reach the store")
	}

	if _, err := svc.UpdatePost(context.Background(), userActor(ownerID), input); err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if _, err := svc.UpdatePost(context.Background(), moderatorActor(), input); err != nil {
		t.Fatalf("moderator update failed: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected two successful updates, got %d", updated)
	}
}

func TestPostScoreDerivesFromVoteCounts(t *testing.T) {
	post := store.Post{
		ID:             uuid.New(),
		Content:        "hello",
		UserID:         uuid.New(),
		UpvotesCount:   3,
		DownvotesCount: 1,
		CommentsCount:  2,
	}
	fs := &fakeStore{
		getPostByIDFn: func(context.Context, uuid.UUID) (store.Post, error) { return post, nil },
	}
	svc := newTestService(fs)

	payload, err := svc.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if payload["score"] != 2 {
		t.Fatalf("expected score 2, got %v", payload["score"])
	}
	if payload["upvotesCount"] != 3 || payload["downvotesCount"] != 1 || payload["commentsCount"] != 2 {
		t.Fatalf("unexpected counts in payload: %v", payload)
	}
}

func TestCreateTopicResolvesCategoryName(t *testing.T) {
	category := store.Category{ID: uuid.New(), Name: "General", Description: "general talk"}
	var saved store.Topic
	fs := &fakeStore{
		getCategoryByIDFn: func(context.Context, uuid.UUID) (store.Category, error) {
			return category, nil
		},
		addTopicFn: func(_ context.Context, topic store.Topic) error {
			saved = topic
			return nil
		},
	}
	svc := newTestService(fs)
	actor := userActor(uuid.New())

	payload, err := svc.CreateTopic(context.Background(), actor, &TopicInput{
		Title:       "Welcome",
		Description: "Introduce yourself",
		CategoryID:  category.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if saved.CategoryName != "General" {
		t.Fatalf("topic must capture the category name, got %q", saved.CategoryName)
	}
	if saved.OwnerID() != actor.UserID {
		t.Fatalf("topic must record its creator, got %s", saved.OwnerID())
	}
	if payload["categoryName"] != "General" {
		t.Fatalf("payload must carry the category name, got %v", payload["categoryName"])
	}
}

func TestCreatePostBroadcastsEvent(t *testing.T) {
	userID := uuid.New()
	topic := store.Topic{ID: uuid.New(), Title: "Welcome"}
	fs := &fakeStore{
		getUserByIDFn: func(context.Context, uuid.UUID) (store.User, error) {
			return store.User{ID: userID, Username: "alice"}, nil
		},
		getTopicByIDFn: func(context.Context, uuid.UUID) (store.Topic, error) { return topic, nil },
	}
	hub := &fakeHub{}
	svc := newTestService(fs)
	svc.hub = hub

	_, err := svc.CreatePost(context.Background(), userActor(userID), &PostInput{
		Content: "first!",
		UserID:  userID,
		TopicID: topic.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(hub.events) != 1 || hub.events[0] != "PostCreated" {
		t.Fatalf("expected PostCreated broadcast, got %v", hub.events)
	}
}

func TestCreatePostRejectsMissingUserOrTopic(t *testing.T) {
	userID := uuid.New()
	fs := &fakeStore{
		getUserByIDFn: func(context.Context, uuid.UUID) (store.User, error) {
			return store.User{ID: userID, Username: "alice"}, nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.CreatePost(context.Background(), userActor(userID), &PostInput{
		Content: "first!",
		UserID:  userID,
		TopicID: uuid.New(),
	})
	domainErr := requireDomainError(t, err, "NOT_FOUND")
	if domainErr.Message != "Can not find user or topic." {
		t.Fatalf("unexpected message: %s", domainErr.Message)
	}
}

func TestCreateCommentRejectsParentFromAnotherPost(t *testing.T) {
	userID := uuid.New()
	post := store.Post{ID: uuid.New()}
	otherPostID := uuid.New()
	parentID := uuid.New()
	fs := &fakeStore{
		getUserByIDFn: func(context.Context, uuid.UUID) (store.User, error) {
			return store.User{ID: userID, Username: "alice"}, nil
		},
		getPostByIDFn: func(context.Context, uuid.UUID) (store.Post, error) { return post, nil },
		getCommentByIDFn: func(context.Context, uuid.UUID) (store.Comment, error) {
			return store.Comment{ID: parentID, PostID: otherPostID}, nil
		},
		addCommentFn: func(context.Context, store.Comment) error {
			t.Fatal("cross-post reply must not reach the store")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.CreateComment(context.Background(), userActor(userID), &CommentInput{
		Content:         "reply",
		UserID:          userID,
		PostID:          post.ID,
		ParentCommentID: &parentID,
	})
	domainErr := requireDomainError(t, err, "INVALID_ARGUMENT")
	if domainErr.Message != "Parent comment belongs to another post." {
		t.Fatalf("unexpected message: %s", domainErr.Message)
	}
}

func TestCreateVoteRejectsBothAndNeitherTarget(t *testing.T) {
	userID := uuid.New()
	postID := uuid.New()
	commentID := uuid.New()
	svc := newTestService(&fakeStore{})
	actor := userActor(userID)

	_, err := svc.CreateVote(context.Background(), actor, &VoteInput{
		UserID:   userID,
		VoteType: store.VoteTypeUp,
	})
	domainErr := requireDomainError(t, err, "INVALID_ARGUMENT")
	if domainErr.Message != "Vote must be for a post or a comment." {
		t.Fatalf("unexpected message: %s", domainErr.Message)
	}

	_, err = svc.CreateVote(context.Background(), actor, &VoteInput{
		UserID:    userID,
		PostID:    &postID,
		CommentID: &commentID,
		VoteType:  store.VoteTypeDown,
	})
	requireDomainError(t, err, "INVALID_ARGUMENT")
}

func TestCreateVoteRejectsUnknownVoteType(t *testing.T) {
	userID := uuid.New()
	postID := uuid.New()
	svc := newTestService(&fakeStore{})

	_, err := svc.CreateVote(context.Background(), userActor(userID), &VoteInput{
		UserID:   userID,
		PostID:   &postID,
		VoteType: "Sideways",
	})
	domainErr := requireDomainError(t, err, "INVALID_ARGUMENT")
	if domainErr.Message != "Vote type must be UpVote or DownVote." {
		t.Fatalf("unexpected message: %s", domainErr.Message)
	}
}

func TestCreateVoteRequiresMatchingUser(t *testing.T) {
	postID := uuid.New()
	svc := newTestService(&fakeStore{})

	_, err := svc.CreateVote(context.Background(), userActor(uuid.New()), &VoteInput{
		UserID:   uuid.New(),
		PostID:   &postID,
		VoteType: store.VoteTypeUp,
	})
	requireForbidden(t, err)
}

func TestDeleteVoteRequiresOwnership(t *testing.T) {
	ownerID := uuid.New()
	postID := uuid.New()
	vote := store.Vote{ID: uuid.New(), UserID: ownerID, PostID: &postID, VoteType: store.VoteTypeUp}
	deleted := 0
	fs := &fakeStore{
		getVoteByIDFn: func(context.Context, uuid.UUID) (store.Vote, error) { return vote, nil },
		deleteVoteFn: func(context.Context, uuid.UUID) error {
			deleted++
			return nil
		},
	}
	svc := newTestService(fs)

	err := svc.DeleteVote(context.Background(), userActor(uuid.New()), &VoteInput{ID: vote.ID})
	requireForbidden(t, err)
	if deleted != 0 {
		t.Fatal("forbidden delete must not reach the store")
	}

	if err := svc.DeleteVote(context.Background(), userActor(ownerID), &VoteInput{ID: vote.ID}); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one delete, got %d", deleted)
	}
}

func TestCreatePostTagRejectsDuplicateRelation(t *testing.T) {
	post := store.Post{ID: uuid.New()}
	tag := store.Tag{ID: uuid.New(), Name: "go"}
	fs := &fakeStore{
		getPostByIDFn: func(context.Context, uuid.UUID) (store.Post, error) { return post, nil },
		getTagByIDFn:  func(context.Context, uuid.UUID) (store.Tag, error) { return tag, nil },
		getPostTagFn: func(context.Context, uuid.UUID, uuid.UUID) (store.PostTag, error) {
			return store.PostTag{PostID: post.ID, TagID: tag.ID, TagName: tag.Name}, nil
		},
		addPostTagFn: func(context.Context, store.PostTag) error {
			t.Fatal("duplicate relation must not reach the store")
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.CreatePostTag(context.Background(), userActor(uuid.New()), &PostTagInput{PostID: post.ID, TagID: tag.ID})
	requireDomainError(t, err, "CONFLICT")
}
