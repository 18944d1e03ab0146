package userlist

import (
	"context"
	"errors"
	"fmt"

	"go-gin-admin-panel/internal/domain"
)

var ErrNotConfirmed = errors.New("delete not confirmed")

// Mutator 远端用户资源；upstream.Client 绑定 token 后实现
type Mutator interface {
	CreateUser(ctx context.Context, in Input) (domain.User, error)
	UpdateUser(ctx context.Context, id uint64, in Input) (domain.User, error)
	DeleteUser(ctx context.Context, id uint64) error
}

// FieldErrors 服务端字段校验错误
type FieldErrors interface {
	error
	FieldErrors() map[string]string
}

type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// MutationClient 不重试，也不改本地 Page；刷新靠之后整页重新加载
type MutationClient struct {
	M      Mutator
	Notify Notifier
}

func NewMutationClient(m Mutator, n Notifier) *MutationClient {
	return &MutationClient{M: m, Notify: n}
}

func (c *MutationClient) Create(ctx context.Context, f *FormState) error {
	f.Begin()
	defer f.Finish()
	name := f.Fields.Name
	if _, err := c.M.CreateUser(ctx, f.Fields); err != nil {
		return c.absorb(f, err)
	}
	f.Reset()
	c.notify(Notification{Title: fmt.Sprintf("%s added", name), Description: "The user has been created."})
	return nil
}

// Update 密码字段原样透传，空串由服务端解释为不修改
func (c *MutationClient) Update(ctx context.Context, id uint64, f *FormState) error {
	f.Begin()
	defer f.Finish()
	u, err := c.M.UpdateUser(ctx, id, f.Fields)
	if err != nil {
		return c.absorb(f, err)
	}
	name := u.Name
	if name == "" {
		name = f.Fields.Name
	}
	f.Reset()
	c.notify(Notification{Title: fmt.Sprintf("%s updated", name), Description: "The user has been updated."})
	return nil
}

// Delete 成功失败都会通知；错误仍返回给调用方记日志
func (c *MutationClient) Delete(ctx context.Context, d *DeleteDialog) error {
	if !d.Confirmed {
		return ErrNotConfirmed
	}
	d.InFlight = true
	err := c.M.DeleteUser(ctx, d.Target.ID)
	d.InFlight = false
	d.Open = false
	c.notify(Notification{Title: fmt.Sprintf("%s deleted", d.Target.Name)})
	return err
}

// absorb 校验错误写进表单，对话框保持打开；错误照常返回
func (c *MutationClient) absorb(f *FormState, err error) error {
	var fe FieldErrors
	if errors.As(err, &fe) {
		f.Errors = make(map[string]string, len(fe.FieldErrors()))
		for k, v := range fe.FieldErrors() {
			f.Errors[k] = v
		}
		f.Open = true
	}
	return err
}

// IsValidation 是否为字段校验错误
func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}

func (c *MutationClient) notify(n Notification) {
	if c.Notify != nil {
		c.Notify.Notify(n)
	}
}
