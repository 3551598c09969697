package dto

// NotificationDTO 通知视图
type NotificationDTO struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	FromUserID   string            `json:"from_user_id"`
	FromUserName string            `json:"from_user_name"`
	Payload      map[string]string `json:"payload"`
	Read         bool              `json:"read"`
	CreatedAt    string            `json:"created_at"`
}

// UnreadCountDTO 未读数视图
type UnreadCountDTO struct {
	Count int `json:"count"`
}
