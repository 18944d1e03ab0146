package user

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memRepo 测试用内存仓库
type memRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]UserModel
}

func newMemRepo() *memRepo { return &memRepo{rows: map[uint64]UserModel{}} }

func (r *memRepo) Create(_ context.Context, m *UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = *m
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint64) (*UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if strings.EqualFold(m.Email, email) {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, offset, limit int) ([]UserModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]UserModel, 0, len(r.rows))
	for _, m := range r.rows {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memRepo) Update(_ context.Context, m *UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = *m
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
