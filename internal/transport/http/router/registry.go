package router

import (
	"sort"

	httpez "go-gin-admin-panel/internal/transport/http/ez"
)

// Module 一组路由；实现 prioritizer 可控制挂载顺序（数值越小越先挂）
type Module interface{ Mount(public, authed, admin httpez.EZ) }

type prioritizer interface{ Priority() int }

type Registry struct{ mods []Module }

func (r *Registry) Register(mods ...Module) { r.mods = append(r.mods, mods...) }

func (r *Registry) MountAll(public, authed, admin httpez.EZ) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(public, authed, admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
