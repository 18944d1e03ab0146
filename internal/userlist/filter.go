package userlist

import (
	"slices"
	"strings"

	"go-gin-admin-panel/internal/domain"
)

// Filter 任一可搜索列包含 query（忽略大小写）即保留。只作用于当前页。
// 只有空串匹配全部，空白按字面匹配。
func Filter(records []domain.User, query string) []domain.User {
	if query == "" {
		return slices.Clone(records)
	}
	q := strings.ToLower(query)
	out := make([]domain.User, 0, len(records))
	for _, u := range records {
		if matches(u, q) {
			out = append(out, u)
		}
	}
	return out
}

func matches(u domain.User, q string) bool {
	for _, f := range searchable {
		if strings.Contains(strings.ToLower(f.text(u)), q) {
			return true
		}
	}
	return false
}
