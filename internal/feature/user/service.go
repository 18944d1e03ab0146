package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/pkg/utils"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
)

// ValidationError 字段 -> 第一条错误信息
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "the given data was invalid" }

type validator struct{ fields map[string]string }

func (v *validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// Repository 持久化接口，gorm 实现在 internal/repo
type Repository interface {
	Create(ctx context.Context, m *UserModel) error
	FindByID(ctx context.Context, id uint64) (*UserModel, error)
	FindByEmail(ctx context.Context, email string) (*UserModel, error)
	List(ctx context.Context, offset, limit int) ([]UserModel, int64, error)
	Update(ctx context.Context, m *UserModel) error
	Delete(ctx context.Context, id uint64) error
}

type Input struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (in *Input) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.TrimSpace(in.Role)
}

type PasswordInput struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

const minPasswordLen = 8

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func (s *Service) checkName(v *validator, name string) {
	switch {
	case name == "":
		v.add("name", "The name field is required.")
	case utf8.RuneCountInString(name) > 255:
		v.add("name", "The name field must not be greater than 255 characters.")
	}
}

// checkEmail selfID 非 0 时允许与自己重复
func (s *Service) checkEmail(ctx context.Context, v *validator, email string, selfID uint64) error {
	if email == "" {
		v.add("email", "The email field is required.")
		return nil
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		v.add("email", "The email field must be a valid email address.")
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		v.add("email", "The email has already been taken.")
	}
	return nil
}

func (s *Service) checkPassword(v *validator, pw, confirm string, required bool) {
	if pw == "" {
		if required {
			v.add("password", "The password field is required.")
		}
		return
	}
	if utf8.RuneCountInString(pw) < minPasswordLen {
		v.add("password", "The password field must be at least 8 characters.")
	}
	if pw != confirm {
		v.add("password_confirmation", "The password field confirmation does not match.")
	}
}

func checkRole(v *validator, role string) {
	if role == "" {
		v.add("role", "The role field is required.")
		return
	}
	if _, err := domain.ParseRole(role); err != nil {
		v.add("role", "The selected role is invalid.")
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*UserModel, error) {
	in.trim()
	var v validator
	s.checkName(&v, in.Name)
	if err := s.checkEmail(ctx, &v, in.Email, 0); err != nil {
		return nil, err
	}
	checkRole(&v, in.Role)
	s.checkPassword(&v, in.Password, in.PasswordConfirmation, true)
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	role, _ := domain.ParseRole(in.Role)
	m := &UserModel{Name: in.Name, Email: in.Email, Role: string(role), PasswordHash: hash}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, emailTaken(err)
	}
	return m, nil
}

// Register 自助注册，角色固定为 user
func (s *Service) Register(ctx context.Context, in Input) (*UserModel, error) {
	in.Role = string(domain.RoleUser)
	return s.Create(ctx, in)
}

// Update 密码留空表示不修改
func (s *Service) Update(ctx context.Context, id uint64, in Input) (*UserModel, error) {
	m, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	in.trim()
	var v validator
	s.checkName(&v, in.Name)
	if err := s.checkEmail(ctx, &v, in.Email, id); err != nil {
		return nil, err
	}
	checkRole(&v, in.Role)
	s.checkPassword(&v, in.Password, in.PasswordConfirmation, false)
	if err := v.err(); err != nil {
		return nil, err
	}

	if m.Email != in.Email {
		m.EmailVerifiedAt = nil
	}
	m.Name, m.Email = in.Name, in.Email
	role, _ := domain.ParseRole(in.Role)
	m.Role = string(role)
	if in.Password != "" {
		if m.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, emailTaken(err)
	}
	return m, nil
}

// UpdateProfile 只改 name/email，角色不变
func (s *Service) UpdateProfile(ctx context.Context, id uint64, name, email string) (*UserModel, error) {
	m, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	in := Input{Name: name, Email: email}
	in.trim()
	var v validator
	s.checkName(&v, in.Name)
	if err := s.checkEmail(ctx, &v, in.Email, id); err != nil {
		return nil, err
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	if m.Email != in.Email {
		m.EmailVerifiedAt = nil
	}
	m.Name, m.Email = in.Name, in.Email
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, emailTaken(err)
	}
	return m, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id uint64, in PasswordInput) error {
	m, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	var v validator
	if in.CurrentPassword == "" || !utils.CheckPassword(in.CurrentPassword, m.PasswordHash) {
		v.add("current_password", "The password is incorrect.")
	}
	s.checkPassword(&v, in.Password, in.PasswordConfirmation, true)
	if err := v.err(); err != nil {
		return err
	}
	if m.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

// DeleteAccount 用户自己注销，需要密码确认
func (s *Service) DeleteAccount(ctx context.Context, id uint64, password string) error {
	m, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if password == "" || !utils.CheckPassword(password, m.PasswordHash) {
		return &ValidationError{Fields: map[string]string{"password": "The password is incorrect."}}
	}
	return s.repo.Delete(ctx, id)
}

// Delete 管理员删除他人
func (s *Service) Delete(ctx context.Context, actorID, id uint64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint64) (*UserModel, error) { return s.mustFind(ctx, id) }

func (s *Service) List(ctx context.Context, page, perPage int, basePath string) (Page, error) {
	page, perPage = NormalizePage(page, perPage)
	ms, total, err := s.repo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return Page{}, err
	}
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Domain())
	}
	return NewPage(out, total, page, perPage, basePath), nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ValidationError{Fields: map[string]string{"email": "These credentials do not match our records."}}
	}
	m, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if m == nil || !utils.CheckPassword(password, m.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return m, nil
}

// EnsureAdmin 启动时补管理员；已存在则不动
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if name == "" {
		name = "Administrator"
	}
	_, err = s.Create(ctx, Input{Name: name, Email: email, Role: string(domain.RoleAdmin), Password: password, PasswordConfirmation: password})
	return err == nil, err
}

// emailTaken 并发写入时由唯一索引兜底
func emailTaken(err error) error {
	if utils.IsDupKey(err) {
		return &ValidationError{Fields: map[string]string{"email": "The email has already been taken."}}
	}
	return err
}

func (s *Service) mustFind(ctx context.Context, id uint64) (*UserModel, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}
