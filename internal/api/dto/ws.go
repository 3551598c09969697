package dto

import "Clanhub/internal/storage"

// WsClientFrame 客户端控制帧
type WsClientFrame struct {
	Action  string `json:"action"`
	Section string `json:"section"`
	Kind    string `json:"kind"`
}

// WsServerFrame 服务端推送帧
type WsServerFrame struct {
	Type    string           `json:"type"`
	Section string           `json:"section,omitempty"`
	Kind    string           `json:"kind,omitempty"`
	Records []storage.Record `json:"records,omitempty"`
	Payload interface{}      `json:"payload,omitempty"`
	Message string           `json:"message,omitempty"`
}
