// Package mention 在文本中检测 @用户名 并对照用户目录解析身份。
// 目录是尽力而为的缓存：未入缓存的用户解析不到，属已接受的降级，
// 不是错误。
package mention

import (
	"strings"

	"Clanhub/internal/model"
)

// Detect 自左向右贪婪扫描 @[A-Za-z0-9_]+，互不重叠。
// 用户名大小写不敏感匹配；excludeUID 的命中被丢弃（不给自己发提及）。
// 未解析的 token 保持纯文本，不报错也不做部分匹配。
func Detect(text string, directory []model.DirectoryEntry, excludeUID string) []model.Mention {
	byHandle := make(map[string]model.DirectoryEntry, len(directory))
	for _, entry := range directory {
		if entry.Username == "" {
			continue
		}
		byHandle[strings.ToLower(entry.Username)] = entry
	}

	var mentions []model.Mention
	for i := 0; i < len(text); {
		if text[i] != '@' {
			i++
			continue
		}
		start := i + 1
		end := start
		for end < len(text) && isHandleChar(text[end]) {
			end++
		}
		if end == start {
			i++
			continue
		}
		handle := text[start:end]
		if entry, ok := byHandle[strings.ToLower(handle)]; ok && entry.UID != excludeUID {
			mentions = append(mentions, model.Mention{
				SourceText:     text,
				MatchedHandle:  handle,
				ResolvedUserID: entry.UID,
				Offset:         i,
			})
		}
		i = end
	}
	return mentions
}

func isHandleChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}
