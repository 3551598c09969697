package model

// Notification 按接收者存储的通知记录
type Notification struct {
	ID           string         `json:"id,omitempty"`
	Type         string         `json:"type"`
	FromUserID   string         `json:"from_user_id"`
	FromUserName string         `json:"from_user_name"`
	TargetUserID string         `json:"target_user_id"`
	Payload      map[string]any `json:"payload,omitempty"`
	Read         bool           `json:"read"`
	CreatedAt    string         `json:"created_at"`
}

// Mention 写入时从文本推导，不落库
type Mention struct {
	SourceText     string
	MatchedHandle  string
	ResolvedUserID string
	Offset         int
}
