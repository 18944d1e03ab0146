package userlist

import (
	"fmt"

	"go-gin-admin-panel/internal/domain"
)

type Link struct {
	URL    string `json:"url"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Page 服务端给的一页数据；元数据以服务端为准，不从切片反推
type Page struct {
	Records     []domain.User `json:"data"`
	Total       int64         `json:"total"`
	From        int           `json:"from"`
	To          int           `json:"to"`
	PerPage     int           `json:"per_page"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
	Links       []Link        `json:"links"`
}

// Validate 检查切片长度与 from/to、per_page 一致
func (p Page) Validate() error {
	n := len(p.Records)
	want := 0
	if p.From > 0 {
		want = p.To - p.From + 1
	}
	if n != want {
		return fmt.Errorf("page holds %d records, range %d-%d implies %d", n, p.From, p.To, want)
	}
	if p.PerPage > 0 && n > p.PerPage {
		return fmt.Errorf("page holds %d records, per_page is %d", n, p.PerPage)
	}
	if int64(n) > p.Total {
		return fmt.Errorf("page holds %d records, total is %d", n, p.Total)
	}
	return nil
}

func (p Page) Empty() bool { return len(p.Records) == 0 }
