package user

import (
	"fmt"
	"strconv"

	"go-gin-admin-panel/internal/domain"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100

	// onEachSide 当前页两侧各保留几页，其余折叠成 "..."
	onEachSide = 3
)

type PageLink struct {
	URL    string `json:"url"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Page 分页响应：from/to 从 1 开始，空页时为 0
type Page struct {
	Data        []domain.User `json:"data"`
	From        int           `json:"from"`
	To          int           `json:"to"`
	Total       int64         `json:"total"`
	PerPage     int           `json:"per_page"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
	Links       []PageLink    `json:"links"`
}

func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return page, perPage
}

// NewPage basePath 形如 /api/v1/admin/users，链接里带 page 参数
func NewPage(data []domain.User, total int64, page, perPage int, basePath string) Page {
	if data == nil {
		data = []domain.User{}
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	p := Page{Data: data, Total: total, PerPage: perPage, CurrentPage: page, LastPage: last}
	if len(data) > 0 {
		p.From = (page-1)*perPage + 1
		p.To = p.From + len(data) - 1
	}

	link := func(n int) string { return fmt.Sprintf("%s?page=%d", basePath, n) }
	prev := PageLink{Label: "&laquo; Previous"}
	if page > 1 {
		prev.URL = link(page - 1)
	}
	p.Links = append(p.Links, prev)
	for _, n := range pageWindow(page, last) {
		if n == 0 {
			p.Links = append(p.Links, PageLink{Label: "..."})
			continue
		}
		p.Links = append(p.Links, PageLink{URL: link(n), Label: strconv.Itoa(n), Active: n == page})
	}
	next := PageLink{Label: "Next &raquo;"}
	if page < last {
		next.URL = link(page + 1)
	}
	p.Links = append(p.Links, next)
	return p
}

// pageWindow 要显示的页码，0 表示省略号。页数少时全列出；
// 否则保留首尾两页和当前页附近的一段。
func pageWindow(cur, last int) []int {
	span := func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
		return out
	}
	if last < onEachSide*2+8 {
		return span(1, last)
	}
	window := onEachSide + 4
	var out []int
	switch {
	case cur <= window:
		out = append(span(1, window+onEachSide), 0)
		out = append(out, last-1, last)
	case cur > last-window:
		out = append(span(1, 2), 0)
		out = append(out, span(last-(window+onEachSide-1), last)...)
	default:
		out = append(span(1, 2), 0)
		out = append(out, span(cur-onEachSide, cur+onEachSide)...)
		out = append(out, 0, last-1, last)
	}
	return out
}
