package userlist

import (
	"fmt"
	"strconv"

	"go-gin-admin-panel/internal/domain"
)

// Field 可排序 / 可搜索的列，显式枚举
type Field string

const (
	FieldID         Field = "id"
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldRole       Field = "role"
	FieldVerifiedAt Field = "email_verified_at"
)

// Fields 表头顺序
var Fields = []Field{FieldID, FieldName, FieldEmail, FieldRole, FieldVerifiedAt}

// searchable 参与文本过滤的列；时间戳不参与
var searchable = []Field{FieldID, FieldName, FieldEmail, FieldRole}

func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

func (f Field) Label() string {
	switch f {
	case FieldID:
		return "ID"
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldRole:
		return "Role"
	case FieldVerifiedAt:
		return "Verified"
	}
	return string(f)
}

// text 列的字符串形式，给过滤用
func (f Field) text(u domain.User) string {
	switch f {
	case FieldID:
		return strconv.FormatUint(u.ID, 10)
	case FieldName:
		return u.Name
	case FieldEmail:
		return u.Email
	case FieldRole:
		return string(u.Role)
	case FieldVerifiedAt:
		if u.EmailVerifiedAt == nil {
			return ""
		}
		return u.EmailVerifiedAt.Format("2006-01-02")
	}
	return ""
}
