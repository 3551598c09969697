package model

// Section 逻辑内容区，进程启动时从配置加载，之后不可变
type Section struct {
	Key          string `json:"key" mapstructure:"key"`
	ContentType  string `json:"content_type" mapstructure:"content_type"`
	RequiredRole string `json:"required_role" mapstructure:"required_role"`
	ClanScoped   bool   `json:"clan_scoped" mapstructure:"clan_scoped"`
}

// SectionRegistry 板块注册表，只读
type SectionRegistry struct {
	sections map[string]Section
	ordered  []Section
}

func NewSectionRegistry(sections []Section) *SectionRegistry {
	r := &SectionRegistry{sections: make(map[string]Section, len(sections))}
	for _, s := range sections {
		if _, ok := r.sections[s.Key]; ok {
			continue
		}
		r.sections[s.Key] = s
		r.ordered = append(r.ordered, s)
	}
	return r
}

// Get 按 key 查找板块
func (r *SectionRegistry) Get(key string) (Section, bool) {
	s, ok := r.sections[key]
	return s, ok
}

// List 返回声明顺序的板块列表
func (r *SectionRegistry) List() []Section {
	out := make([]Section, len(r.ordered))
	copy(out, r.ordered)
	return out
}
