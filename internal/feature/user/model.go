package user

import (
	"time"

	"go-gin-admin-panel/internal/domain"
)

type UserModel struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	Email           string `gorm:"uniqueIndex;size:255;not null"`
	Name            string `gorm:"size:255;not null"`
	PasswordHash    string `gorm:"size:100;not null"`
	Role            string `gorm:"size:16;not null;default:user"`
	EmailVerifiedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m UserModel) Domain() domain.User {
	return domain.User{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Role:            domain.Role(m.Role),
		EmailVerifiedAt: m.EmailVerifiedAt,
	}
}
