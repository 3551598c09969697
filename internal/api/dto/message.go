package dto

// SendMessageReq 发送聊天消息请求
type SendMessageReq struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// MessageDTO 聊天消息视图
type MessageDTO struct {
	ID              string `json:"id"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name"`
	Text            string `json:"text"`
	CreatedAt       string `json:"created_at"`
	IsSystemMessage bool   `json:"is_system_message"`
}
