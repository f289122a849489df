package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- users ---

func (s *PostgresStore) AddUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.PasswordHash, user.Email, user.Role, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, role, created_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, role, created_at
		FROM users
		WHERE username=$1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, email, role, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		var item User
		if err := rows.Scan(&item.ID, &item.Username, &item.PasswordHash, &item.Email, &item.Role, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username=$2, password_hash=$3, email=$4, role=$5
		WHERE id=$1
	`, user.ID, user.Username, user.PasswordHash, user.Email, user.Role)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// --- categories ---

func (s *PostgresStore) AddCategory(ctx context.Context, category Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
	`, category.ID, category.Name, category.Description)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM categories WHERE id=$1
	`, categoryID).Scan(&item.ID, &item.Name, &item.Description)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

// GetCategoryByName matches case-insensitively so duplicate checks catch
// renamed-case variants.
func (s *PostgresStore) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM categories WHERE LOWER(name)=LOWER($1)
	`, name).Scan(&item.ID, &item.Name, &item.Description)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		var item Category
		if err := rows.Scan(&item.ID, &item.Name, &item.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name=$2, description=$3 WHERE id=$1
	`, category.ID, category.Name, category.Description)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- tags ---

func (s *PostgresStore) AddTag(ctx context.Context, tag Tag) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES ($1, $2)`, tag.ID, tag.Name)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTagByID(ctx context.Context, tagID uuid.UUID) (Tag, error) {
	var item Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id=$1`, tagID).Scan(&item.ID, &item.Name)
	if err != nil {
		return Tag{}, err
	}
	return item, nil
}

func (s *PostgresStore) GetTagByName(ctx context.Context, name string) (Tag, error) {
	var item Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE LOWER(name)=LOWER($1)`, name).Scan(&item.ID, &item.Name)
	if err != nil {
		return Tag{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := make([]Tag, 0)
	for rows.Next() {
		var item Tag
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateTag(ctx context.Context, tag Tag) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tags SET name=$2 WHERE id=$1`, tag.ID, tag.Name)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteTag(ctx context.Context, tagID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id=$1`, tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// --- topics ---

func (s *PostgresStore) AddTopic(ctx context.Context, topic Topic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, title, description, category_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, topic.ID, topic.Title, topic.Description, topic.CategoryID, topic.UserID, topic.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

const topicColumns = `
	t.id, t.title, t.description, t.category_id, c.name, t.user_id, t.created_at
`

func scanTopic(row interface{ Scan(...any) error }) (Topic, error) {
	var item Topic
	err := row.Scan(&item.ID, &item.Title, &item.Description, &item.CategoryID, &item.CategoryName, &item.UserID, &item.CreatedAt)
	return item, err
}

func (s *PostgresStore) GetTopicByID(ctx context.Context, topicID uuid.UUID) (Topic, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+topicColumns+`
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		WHERE t.id=$1
	`, topicID)
	return scanTopic(row)
}

func (s *PostgresStore) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+topicColumns+`
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	items := make([]Topic, 0)
	for rows.Next() {
		item, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListTopicsByCategory(ctx context.Context, categoryID uuid.UUID) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+topicColumns+`
		FROM topics t
		JOIN categories c ON c.id = t.category_id
		WHERE t.category_id=$1
		ORDER BY t.created_at DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list topics by category: %w", err)
	}
	defer rows.Close()

	items := make([]Topic, 0)
	for rows.Next() {
		item, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateTopic(ctx context.Context, topic Topic) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE topics SET title=$2, description=$3, category_id=$4 WHERE id=$1
	`, topic.ID, topic.Title, topic.Description, topic.CategoryID)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteTopic(ctx context.Context, topicID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id=$1`, topicID)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return nil
}

// --- posts ---

// Post reads compute vote and comment counts live; nothing is denormalized.
const postColumns = `
	p.id, p.content, p.user_id, u.username, p.topic_id, t.title, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM votes v WHERE v.post_id = p.id AND v.vote_type = 'UpVote'),
	(SELECT COUNT(*) FROM votes v WHERE v.post_id = p.id AND v.vote_type = 'DownVote'),
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id)
`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var item Post
	err := row.Scan(
		&item.ID, &item.Content, &item.UserID, &item.Username, &item.TopicID, &item.TopicTitle,
		&item.CreatedAt, &item.UpdatedAt,
		&item.UpvotesCount, &item.DownvotesCount, &item.CommentsCount,
	)
	return item, err
}

func (s *PostgresStore) AddPost(ctx context.Context, post Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, content, user_id, topic_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, post.ID, post.Content, post.UserID, post.TopicID, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPostByID(ctx context.Context, postID uuid.UUID) (Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.user_id
		JOIN topics t ON t.id = p.topic_id
		WHERE p.id=$1
	`, postID)
	return scanPost(row)
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.user_id
		JOIN topics t ON t.id = p.topic_id
		ORDER BY p.created_at DESC
	`)
}

func (s *PostgresStore) ListPostsByTopic(ctx context.Context, topicID uuid.UUID) ([]Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.user_id
		JOIN topics t ON t.id = p.topic_id
		WHERE p.topic_id=$1
		ORDER BY p.created_at
	`, topicID)
}

func (s *PostgresStore) listPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := make([]Post, 0)
	for rows.Next() {
		item, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, post Post) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET content=$2, updated_at=NOW() WHERE id=$1
	`, post.ID, post.Content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, postID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id=$1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// --- comments ---

const commentColumns = `
	cm.id, cm.content, cm.user_id, cm.post_id, cm.parent_comment_id, cm.created_at, cm.updated_at,
	(SELECT COUNT(*) FROM votes v WHERE v.comment_id = cm.id AND v.vote_type = 'UpVote'),
	(SELECT COUNT(*) FROM votes v WHERE v.comment_id = cm.id AND v.vote_type = 'DownVote'),
	(SELECT COUNT(*) FROM comments r WHERE r.parent_comment_id = cm.id)
`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var item Comment
	err := row.Scan(
		&item.ID, &item.Content, &item.UserID, &item.PostID, &item.ParentCommentID,
		&item.CreatedAt, &item.UpdatedAt,
		&item.UpvotesCount, &item.DownvotesCount, &item.RepliesCount,
	)
	return item, err
}

func (s *PostgresStore) AddComment(ctx context.Context, comment Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, content, user_id, post_id, parent_comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.Content, comment.UserID, comment.PostID, comment.ParentCommentID, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCommentByID(ctx context.Context, commentID uuid.UUID) (Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments cm
		WHERE cm.id=$1
	`, commentID)
	return scanComment(row)
}

func (s *PostgresStore) ListComments(ctx context.Context) ([]Comment, error) {
	return s.listComments(ctx, `
		SELECT `+commentColumns+`
		FROM comments cm
		ORDER BY cm.created_at DESC
	`)
}

func (s *PostgresStore) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	return s.listComments(ctx, `
		SELECT `+commentColumns+`
		FROM comments cm
		WHERE cm.post_id=$1
		ORDER BY cm.created_at
	`, postID)
}

func (s *PostgresStore) listComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		item, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateComment(ctx context.Context, comment Comment) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content=$2, updated_at=NOW() WHERE id=$1
	`, comment.ID, comment.Content)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// --- post tags ---

func (s *PostgresStore) AddPostTag(ctx context.Context, postTag PostTag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
	`, postTag.PostID, postTag.TagID)
	if err != nil {
		return fmt.Errorf("insert post tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPostTag(ctx context.Context, postID, tagID uuid.UUID) (PostTag, error) {
	var item PostTag
	err := s.db.QueryRowContext(ctx, `
		SELECT pt.post_id, pt.tag_id, tg.name
		FROM post_tags pt
		JOIN tags tg ON tg.id = pt.tag_id
		WHERE pt.post_id=$1 AND pt.tag_id=$2
	`, postID, tagID).Scan(&item.PostID, &item.TagID, &item.TagName)
	if err != nil {
		return PostTag{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListPostTagsByPost(ctx context.Context, postID uuid.UUID) ([]PostTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, pt.tag_id, tg.name
		FROM post_tags pt
		JOIN tags tg ON tg.id = pt.tag_id
		WHERE pt.post_id=$1
		ORDER BY tg.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post tags: %w", err)
	}
	defer rows.Close()

	items := make([]PostTag, 0)
	for rows.Next() {
		var item PostTag
		if err := rows.Scan(&item.PostID, &item.TagID, &item.TagName); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post tags: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeletePostTag(ctx context.Context, postID, tagID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id=$1 AND tag_id=$2`, postID, tagID)
	if err != nil {
		return fmt.Errorf("delete post tag: %w", err)
	}
	return nil
}

// --- votes ---

func (s *PostgresStore) AddVote(ctx context.Context, vote Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, user_id, post_id, comment_id, vote_type, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, vote.ID, vote.UserID, vote.PostID, vote.CommentID, vote.VoteType, vote.VotedAt)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetVoteByID(ctx context.Context, voteID uuid.UUID) (Vote, error) {
	var item Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, post_id, comment_id, vote_type, voted_at
		FROM votes
		WHERE id=$1
	`, voteID).Scan(&item.ID, &item.UserID, &item.PostID, &item.CommentID, &item.VoteType, &item.VotedAt)
	if err != nil {
		return Vote{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListVotes(ctx context.Context) ([]Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, post_id, comment_id, vote_type, voted_at
		FROM votes
		ORDER BY voted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	items := make([]Vote, 0)
	for rows.Next() {
		var item Vote
		if err := rows.Scan(&item.ID, &item.UserID, &item.PostID, &item.CommentID, &item.VoteType, &item.VotedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateVote(ctx context.Context, vote Vote) error {
	_, err := s.db.ExecContext(ctx, `UPDATE votes SET vote_type=$2 WHERE id=$1`, vote.ID, vote.VoteType)
	if err != nil {
		return fmt.Errorf("update vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id=$1`, voteID)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}
