package model

// Message 聊天频道消息，只追加，严格按 created_at 排序
type Message struct {
	ID              string `json:"id,omitempty"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name"`
	Text            string `json:"text"`
	CreatedAt       string `json:"created_at"`
	IsSystemMessage bool   `json:"is_system_message,omitempty"`
}
