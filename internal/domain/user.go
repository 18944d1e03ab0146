package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role 只有两种取值
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

func (r Role) String() string { return string(r) }

// ParseRole 大小写不敏感；未知取值返回错误
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User 是管理列表里的一条记录。ID 由服务端分配，创建后不可变。
type User struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
}

// Initials 头像兜底文字："Ann Lee" -> "AL"
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

func (u User) Verified() bool { return u.EmailVerifiedAt != nil }
