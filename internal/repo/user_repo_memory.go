package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-gin-admin-panel/internal/feature/user"
)

// MemoryUserRepo db.driver=memory 时使用，进程重启数据即丢
type MemoryUserRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]user.UserModel
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{rows: map[uint64]user.UserModel{}}
}

func (r *MemoryUserRepo) Create(_ context.Context, m *user.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if strings.EqualFold(row.Email, m.Email) {
			return errDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now()
	m.ID, m.CreatedAt, m.UpdatedAt = r.nextID, now, now
	r.rows[m.ID] = *m
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id uint64) (*user.UserModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*user.UserModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rows {
		if strings.EqualFold(m.Email, email) {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) List(_ context.Context, offset, limit int) ([]user.UserModel, int64, error) {
	r.mu.RLock()
	all := make([]user.UserModel, 0, len(r.rows))
	for _, m := range r.rows {
		all = append(all, m)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	offset = min(max(offset, 0), len(all))
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (r *MemoryUserRepo) Update(_ context.Context, m *user.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return user.ErrNotFound
	}
	for id, row := range r.rows {
		if id != m.ID && strings.EqualFold(row.Email, m.Email) {
			return errDuplicateEmail
		}
	}
	m.UpdatedAt = time.Now()
	r.rows[m.ID] = *m
	return nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type dupErr struct{}

func (dupErr) Error() string { return "duplicate key: users.email" }

var errDuplicateEmail error = dupErr{}

var _ user.Repository = (*MemoryUserRepo)(nil)
