package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultTopic   ResultType = "topic"
	ResultPost    ResultType = "post"
	ResultComment ResultType = "comment"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	TopicID string     `json:"topicId,omitempty"`
	PostID  string     `json:"postId,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// TopicRecord is the data we index for a topic.
type TopicRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
}

// PostRecord is the data we index for a post.
type PostRecord struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	TopicID  string `json:"topicId"`
	Username string `json:"username"`
}

// CommentRecord is the data we index for a comment.
type CommentRecord struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	PostID  string `json:"postId"`
}
