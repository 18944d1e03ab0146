package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-admin-panel/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Migrate() error { return r.db.AutoMigrate(&user.UserModel{}) }

func (r *UserRepo) Create(ctx context.Context, m *user.UserModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID 查不到返回 (nil, nil)
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*user.UserModel, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.UserModel, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*user.UserModel, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List 按 id 升序，保证翻页稳定
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]user.UserModel, int64, error) {
	db := r.db.WithContext(ctx)
	var total int64
	if err := db.Model(&user.UserModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}

func (r *UserRepo) Update(ctx context.Context, m *user.UserModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete 物理删除，邮箱随即可以重新注册
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&user.UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

var _ user.Repository = (*UserRepo)(nil)
