package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/theme"
	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
)

const (
	dialogCreate = "create"
	dialogEdit   = "edit"
	dialogDelete = "delete"
)

// dialog 当前打开的对话框；POST 校验失败时带着表单状态回显
type dialog struct {
	Kind   string
	ID     uint64
	Form   *userlist.FormState
	Delete *userlist.DeleteDialog
}

type usersView struct {
	Layout
	Cfg     userlist.Config
	State   listState
	Rows    []domain.User
	Headers []header
	Links   []pageLink
	Summary userlist.Summary
	Roles   []domain.Role
	Self    uint64

	Dialog       string
	Form         *userlist.FormState
	Delete       *userlist.DeleteDialog
	FormAction   string
	DeleteAction string
	CreateURL    string
	CloseURL     string
}

func (v usersView) EditURL(id uint64) string {
	return v.State.url(usersPath, "dialog", dialogEdit, "id", strconv.FormatUint(id, 10))
}

func (v usersView) DeleteURL(id uint64) string {
	return v.State.url(usersPath, "dialog", dialogDelete, "id", strconv.FormatUint(id, 10))
}

func userURL(id uint64) string { return usersPath + "/" + strconv.FormatUint(id, 10) }

func (h *Handler) listUsers(c *gin.Context) {
	d := dialog{Kind: c.Query("dialog")}
	if id, err := strconv.ParseUint(c.Query("id"), 10, 64); err == nil {
		d.ID = id
	}
	h.renderUsers(c, parseListState(c), http.StatusOK, d)
}

// renderUsers 每次都从 API 重新拉当前页，排序 / 过滤在本页内完成
func (h *Handler) renderUsers(c *gin.Context, st listState, status int, d dialog) {
	page, err := h.API.ListUsers(h.ctx(c), h.session(c).Token(), st.Page)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := page.Validate(); err != nil {
		h.Log.Warn("inconsistent users page", zap.Int("page", st.Page), zap.Error(err))
	}

	cfg := h.List
	ctl := userlist.NewController(page, cfg)
	ctl.SetSort(st.Sort)
	ctl.SetQuery(st.Query)
	st.Query = ctl.Query()

	lay := h.layout(c, cfg.Title, "users", crumb{Label: "Dashboard", URL: "/dashboard"}, crumb{Label: cfg.Title})
	if !cfg.DarkMode {
		lay.Theme.Mode = theme.Light
	}
	v := usersView{
		Layout:    lay,
		Cfg:       cfg,
		State:     st,
		Rows:      ctl.Rows(),
		Headers:   st.headers(),
		Links:     st.pageLinks(page.Links),
		Summary:   ctl.Summary(),
		Roles:     []domain.Role{domain.RoleUser, domain.RoleAdmin},
		CreateURL: st.url(usersPath, "dialog", dialogCreate),
		CloseURL:  st.url(usersPath),
	}
	if u := currentUser(c); u != nil {
		v.Self = u.ID
	}
	h.openDialog(&v, ctl, d)
	h.render(c, status, "users", v)
}

func (h *Handler) openDialog(v *usersView, ctl *userlist.Controller, d dialog) {
	cfg := v.Cfg
	switch d.Kind {
	case dialogCreate:
		if !cfg.Create {
			return
		}
		v.Form = d.Form
		if v.Form == nil {
			v.Form = userlist.NewForm(userlist.Input{Role: string(domain.RoleUser)})
		}
		v.FormAction = v.State.url(usersPath)
	case dialogEdit:
		if !cfg.Edit {
			return
		}
		v.Form = d.Form
		if v.Form == nil {
			u, ok := ctl.Find(d.ID)
			if !ok {
				return
			}
			v.Form = userlist.NewForm(userlist.InputFrom(u))
		}
		v.FormAction = v.State.url(userURL(d.ID))
	case dialogDelete:
		if !cfg.Delete {
			return
		}
		u, ok := ctl.Find(d.ID)
		if !ok {
			return
		}
		v.Delete = &userlist.DeleteDialog{Target: u, Open: true}
		v.DeleteAction = v.State.url(userURL(d.ID) + "/delete")
	default:
		return
	}
	v.Dialog = d.Kind
}

func (h *Handler) mutations(c *gin.Context) *userlist.MutationClient {
	sess := h.session(c)
	return userlist.NewMutationClient(h.API.WithToken(sess.Token()), sess)
}

func bindInput(c *gin.Context) userlist.Input {
	var in userlist.Input
	_ = c.ShouldBindWith(&in, binding.Form)
	return in
}

func (h *Handler) createUser(c *gin.Context) {
	if !h.List.Create {
		h.renderError(c, http.StatusNotFound, "Creating users is disabled.")
		return
	}
	st := parseListState(c)
	form := userlist.NewForm(bindInput(c))
	err := h.mutations(c).Create(h.ctx(c), form)
	switch {
	case userlist.IsValidation(err):
		form.ClearPasswords()
		h.renderUsers(c, st, http.StatusUnprocessableEntity, dialog{Kind: dialogCreate, Form: form})
	case err != nil:
		h.fail(c, err)
	default:
		h.redirect(c, st.url(usersPath))
	}
}

func (h *Handler) updateUser(c *gin.Context) {
	if !h.List.Edit {
		h.renderError(c, http.StatusNotFound, "Editing users is disabled.")
		return
	}
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Unknown user.")
		return
	}
	st := parseListState(c)
	form := userlist.NewForm(bindInput(c))
	err := h.mutations(c).Update(h.ctx(c), id, form)
	switch {
	case userlist.IsValidation(err):
		form.ClearPasswords()
		h.renderUsers(c, st, http.StatusUnprocessableEntity, dialog{Kind: dialogEdit, ID: id, Form: form})
	case err != nil:
		h.fail(c, err)
	default:
		h.redirect(c, st.url(usersPath))
	}
}

// deleteUser 需要 confirm=confirm；结果无论成败都会有 toast
func (h *Handler) deleteUser(c *gin.Context) {
	if !h.List.Delete {
		h.renderError(c, http.StatusNotFound, "Deleting users is disabled.")
		return
	}
	id, ok := paramID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, "Unknown user.")
		return
	}
	st := parseListState(c)
	d := &userlist.DeleteDialog{
		Target:    h.deleteTarget(c, st, id),
		Confirmed: c.PostForm("confirm") == "confirm",
		Open:      true,
	}
	err := h.mutations(c).Delete(h.ctx(c), d)
	switch {
	case errors.Is(err, userlist.ErrNotConfirmed):
		h.redirect(c, st.url(usersPath, "dialog", dialogDelete, "id", strconv.FormatUint(id, 10)))
		return
	case errors.Is(err, upstream.ErrUnauthorized):
		h.fail(c, err)
		return
	case err != nil:
		h.Log.Warn("delete user failed", zap.Uint64("id", id), zap.Error(err))
	}
	h.redirect(c, st.url(usersPath))
}

// deleteTarget 从当前页取名字，找不到时用 User #id
func (h *Handler) deleteTarget(c *gin.Context, st listState, id uint64) domain.User {
	fallback := domain.User{ID: id, Name: "User #" + strconv.FormatUint(id, 10)}
	page, err := h.API.ListUsers(h.ctx(c), h.session(c).Token(), st.Page)
	if err != nil {
		return fallback
	}
	if u, ok := userlist.NewController(page, h.List).Find(id); ok {
		return u
	}
	return fallback
}

func paramID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
