package userlist

import (
	"cmp"
	"slices"
	"strings"

	"go-gin-admin-panel/internal/domain"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection 非 desc 一律按 asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState 零值表示未排序
type SortState struct {
	Field     Field
	Direction Direction
}

func (s SortState) Active() bool { return s.Field != "" }

// Toggle 同一列翻转方向，换列回到升序
func (s SortState) Toggle(f Field) SortState {
	if s.Field == f {
		if s.Direction == Desc {
			return SortState{Field: f, Direction: Asc}
		}
		return SortState{Field: f, Direction: Desc}
	}
	return SortState{Field: f, Direction: Asc}
}

// Indicator 当前列的方向，非当前列返回空
func (s SortState) Indicator(f Field) Direction {
	if s.Field != f {
		return ""
	}
	if s.Direction == "" {
		return Asc
	}
	return s.Direction
}

// Sort 稳定排序，返回新切片；未排序时原序拷贝
func Sort(records []domain.User, s SortState) []domain.User {
	out := slices.Clone(records)
	if !s.Active() {
		return out
	}
	cmpFn := comparator(s.Field)
	if cmpFn == nil {
		return out
	}
	if s.Direction == Desc {
		slices.SortStableFunc(out, func(a, b domain.User) int { return cmpFn(b, a) })
	} else {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator(f Field) func(a, b domain.User) int {
	switch f {
	case FieldID:
		return func(a, b domain.User) int { return cmp.Compare(a.ID, b.ID) }
	case FieldName:
		return func(a, b domain.User) int { return strings.Compare(a.Name, b.Name) }
	case FieldEmail:
		return func(a, b domain.User) int { return strings.Compare(a.Email, b.Email) }
	case FieldRole:
		return func(a, b domain.User) int { return strings.Compare(string(a.Role), string(b.Role)) }
	case FieldVerifiedAt:
		// 未验证（nil）排在最前
		return func(a, b domain.User) int {
			switch {
			case a.EmailVerifiedAt == nil && b.EmailVerifiedAt == nil:
				return 0
			case a.EmailVerifiedAt == nil:
				return -1
			case b.EmailVerifiedAt == nil:
				return 1
			}
			return a.EmailVerifiedAt.Compare(*b.EmailVerifiedAt)
		}
	}
	return nil
}
