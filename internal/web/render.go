package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/gin-gonic/gin/render"

	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/theme"
	"go-gin-admin-panel/internal/userlist"
)

//go:embed views
var viewsFS embed.FS

// 页面 -> 外壳布局
var pages = map[string]string{
	"login":     "auth",
	"register":  "auth",
	"error":     "auth",
	"dashboard": "app",
	"settings":  "app",
	"users":     "app",
}

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

// htmlRender 每个页面单独一套模板，避免 content 块互相覆盖
type htmlRender struct {
	ts map[string]*template.Template
}

func loadTemplates(fsys fs.FS) (*htmlRender, error) {
	r := &htmlRender{ts: make(map[string]*template.Template, len(pages))}
	for page, layout := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(fsys,
			"views/layouts/"+layout+".html",
			"views/partials/*.html",
			"views/pages/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.ts[page] = t
	}
	return r, nil
}

func (r *htmlRender) Instance(name string, data any) render.Render {
	return render.HTML{Template: r.ts[name], Name: "layout", Data: data}
}

type crumb struct {
	Label string
	URL   string
}

// Layout 两种外壳共用的数据
type Layout struct {
	AppName string
	Title   string
	Nav     string
	Crumbs  []crumb
	User    *domain.User
	Theme   theme.Context
	Flashes []userlist.Notification
}

func (l Layout) Dark() bool { return l.Theme.Dark() }

func (l Layout) IsAdmin() bool { return l.User != nil && l.User.Role == domain.RoleAdmin }
