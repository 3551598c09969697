package model

// Comment 主题回复，创建后不可变。
// 创建时必须附带父主题 reply_count / last_activity 的递增副作用。
type Comment struct {
	ID         string `json:"id,omitempty"`
	ThreadID   string `json:"thread_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}
