package model

// Thread 论坛主题。引擎从不物理删除，只做状态流转。
// 时间戳统一为 RFC3339Nano 字符串，按字典序即时间序。
type Thread struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name"`
	CreatedAt       string `json:"created_at"`
	LastActivity    string `json:"last_activity"`
	ReplyCount      int    `json:"reply_count"`
	ViewCount       int    `json:"view_count"`
	Status          string `json:"status"`
	ModeratedBy     string `json:"moderated_by,omitempty"`
	ModeratedAt     string `json:"moderated_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}
