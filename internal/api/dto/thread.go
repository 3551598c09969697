package dto

// CreateThreadReq 发帖请求
type CreateThreadReq struct {
	Title   string `json:"title" validate:"required,max=120"`
	Content string `json:"content" validate:"required,max=10000"`
}

// CreateCommentReq 回帖请求
type CreateCommentReq struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// RejectThreadReq 驳回请求
type RejectThreadReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ThreadDTO 帖子视图
type ThreadDTO struct {
	ID              string `json:"id"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	ReplyCount      int    `json:"reply_count"`
	ViewCount       int    `json:"view_count"`
	CreatedAt       string `json:"created_at"`
	LastActivity    string `json:"last_activity"`
	ModeratedBy     string `json:"moderated_by,omitempty"`
	ModeratedAt     string `json:"moderated_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// CommentDTO 回帖视图
type CommentDTO struct {
	ID         string `json:"id"`
	ThreadID   string `json:"thread_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}
