package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across topics, posts and comments using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultTopic {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'topic'::text AS type, t.id::text, t.title,
				ts_headline('english', coalesce(t.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				t.id::text AS topic_id, ''::text AS post_id,
				ts_rank(t.fts, %s) AS rank
			FROM topics t
			WHERE t.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultPost {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'post'::text AS type, p.id::text, u.username AS title,
				ts_headline('english', coalesce(p.content, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				p.topic_id::text, ''::text AS post_id,
				ts_rank(p.fts, %s) AS rank
			FROM posts p
			JOIN users u ON u.id = p.user_id
			WHERE p.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultComment {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'comment'::text AS type, cm.id::text, ''::text AS title,
				ts_headline('english', coalesce(cm.content, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				''::text AS topic_id, cm.post_id::text,
				ts_rank(cm.fts, %s) AS rank
			FROM comments cm
			WHERE cm.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, topic_id, post_id
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.TopicID, &r.PostID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]TopicRecord, []PostRecord, []CommentRecord, error) {
	topicRows, err := p.db.QueryContext(ctx, `
		SELECT id::text, title, description, category_id::text
		FROM topics
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load topics: %w", err)
	}
	defer topicRows.Close()

	topics := make([]TopicRecord, 0)
	for topicRows.Next() {
		var t TopicRecord
		if err := topicRows.Scan(&t.ID, &t.Title, &t.Description, &t.CategoryID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := topicRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate topics: %w", err)
	}

	postRows, err := p.db.QueryContext(ctx, `
		SELECT p.id::text, p.content, p.topic_id::text, u.username
		FROM posts p
		JOIN users u ON u.id = p.user_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load posts: %w", err)
	}
	defer postRows.Close()

	posts := make([]PostRecord, 0)
	for postRows.Next() {
		var record PostRecord
		if err := postRows.Scan(&record.ID, &record.Content, &record.TopicID, &record.Username); err != nil {
			return nil, nil, nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, record)
	}
	if err := postRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate posts: %w", err)
	}

	commentRows, err := p.db.QueryContext(ctx, `
		SELECT id::text, content, post_id::text
		FROM comments
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load comments: %w", err)
	}
	defer commentRows.Close()

	comments := make([]CommentRecord, 0)
	for commentRows.Next() {
		var record CommentRecord
		if err := commentRows.Scan(&record.ID, &record.Content, &record.PostID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, record)
	}
	if err := commentRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate comments: %w", err)
	}

	return topics, posts, comments, nil
}
