package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
)

type loginView struct {
	Layout
	Email    string
	Remember bool
	Errors   map[string]string
}

type registerView struct {
	Layout
	Form   userlist.Input
	Errors map[string]string
}

func (h *Handler) loginPage(c *gin.Context) {
	if !h.guestOnly(c) {
		return
	}
	h.render(c, http.StatusOK, "login", loginView{Layout: h.layout(c, "Log in to your account", "")})
}

// login 失败回显时不带密码
func (h *Handler) login(c *gin.Context) {
	email := c.PostForm("email")
	remember := c.PostForm("remember") != ""
	res, err := h.API.Login(h.ctx(c), email, c.PostForm("password"), remember)
	var ve *upstream.ValidationError
	if errors.As(err, &ve) {
		h.render(c, http.StatusUnprocessableEntity, "login", loginView{
			Layout:   h.layout(c, "Log in to your account", ""),
			Email:    email,
			Remember: remember,
			Errors:   ve.Fields,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.session(c).Login(res.Token, res.User, remember, h.MaxAge)
	h.redirect(c, "/dashboard")
}

func (h *Handler) registerPage(c *gin.Context) {
	if !h.guestOnly(c) {
		return
	}
	h.render(c, http.StatusOK, "register", registerView{Layout: h.layout(c, "Create an account", "")})
}

func (h *Handler) register(c *gin.Context) {
	in := bindInput(c)
	in.Role = ""
	res, err := h.API.Register(h.ctx(c), in)
	var ve *upstream.ValidationError
	if errors.As(err, &ve) {
		in.Password, in.PasswordConfirmation = "", ""
		h.render(c, http.StatusUnprocessableEntity, "register", registerView{
			Layout: h.layout(c, "Create an account", ""),
			Form:   in,
			Errors: ve.Fields,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	sess := h.session(c)
	sess.Login(res.Token, res.User, false, h.MaxAge)
	sess.Notify(userlist.Notification{Title: "Welcome, " + res.User.Name})
	h.redirect(c, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	h.forgetProfile(c)
	h.session(c).Clear()
	h.redirect(c, "/login")
}
