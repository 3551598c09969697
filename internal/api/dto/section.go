package dto

// SectionDTO 板块视图, 带上当前用户的访问标记
type SectionDTO struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ClanScoped  bool   `json:"clan_scoped"`
	CanAccess   bool   `json:"can_access"`
	CanModerate bool   `json:"can_moderate"`
}

// DirectoryEntryDTO 用户目录条目视图
type DirectoryEntryDTO struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Clan     string `json:"clan"`
	Role     string `json:"role"`
}
