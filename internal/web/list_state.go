package web

import (
	"html"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/userlist"
)

const usersPath = "/admin/users"

// listState 列表视图的 URL 状态：page / sort / dir / q
type listState struct {
	Page  int
	Sort  userlist.SortState
	Query string
}

func parseListState(c *gin.Context) listState {
	s := listState{Page: 1, Query: c.Query("q")}
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		s.Page = p
	}
	if f, err := userlist.ParseField(c.Query("sort")); err == nil {
		s.Sort = userlist.SortState{Field: f, Direction: userlist.ParseDirection(c.Query("dir"))}
	}
	return s
}

func (s listState) values() url.Values {
	v := url.Values{}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.Sort.Active() {
		v.Set("sort", string(s.Sort.Field))
		v.Set("dir", string(s.Sort.Indicator(s.Sort.Field)))
	}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	return v
}

// url path 加上当前状态和额外参数
func (s listState) url(path string, extra ...string) string {
	v := s.values()
	for i := 0; i+1 < len(extra); i += 2 {
		v.Set(extra[i], extra[i+1])
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

type header struct {
	Label string
	URL   string
	Dir   userlist.Direction
}

func (s listState) headers() []header {
	out := make([]header, 0, len(userlist.Fields))
	for _, f := range userlist.Fields {
		next := s
		next.Sort = s.Sort.Toggle(f)
		out = append(out, header{Label: f.Label(), URL: next.url(usersPath), Dir: s.Sort.Indicator(f)})
	}
	return out
}

type pageLink struct {
	Label    string
	URL      string
	Active   bool
	Disabled bool
}

// pageLinks 把 API 的分页链接换成面板地址，保留排序和搜索
func (s listState) pageLinks(links []userlist.Link) []pageLink {
	out := make([]pageLink, 0, len(links))
	for _, l := range links {
		pl := pageLink{Label: html.UnescapeString(l.Label), Active: l.Active}
		n := pageOf(l.URL)
		if n == 0 {
			pl.Disabled = true
		} else {
			next := s
			next.Page = n
			pl.URL = next.url(usersPath)
		}
		out = append(out, pl)
	}
	return out
}

func pageOf(raw string) int {
	if raw == "" {
		return 0
	}
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
