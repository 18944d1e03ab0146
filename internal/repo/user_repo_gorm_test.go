package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-admin-panel/internal/feature/user"
)

// newSQLiteRepo 每个用例一个独立的内存库
func newSQLiteRepo(t *testing.T) *UserRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 每个连接是一个库，只留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := NewUserRepo(db)
	require.NoError(t, r.Migrate())
	return r
}

func TestGormUserRepoContract(t *testing.T) {
	testUserRepository(t, func(t *testing.T) user.Repository { return newSQLiteRepo(t) })
}

// 删除后同邮箱重新添加，走完整的 service 校验
func TestGormServiceDeleteThenRecreate(t *testing.T) {
	ctx := context.Background()
	s := user.NewService(newSQLiteRepo(t))
	ann, err := s.Create(ctx, user.Input{Name: "Ann", Email: "ann@x.com", Role: "admin", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	bobIn := user.Input{Name: "Bob", Email: "bob@x.com", Role: "user", Password: "password1", PasswordConfirmation: "password1"}
	bob, err := s.Create(ctx, bobIn)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ann.ID, bob.ID))
	again, err := s.Create(ctx, bobIn)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", again.Email)

	_, err = s.Update(ctx, again.ID, user.Input{Name: "Bob", Email: "ann@x.com", Role: "user"})
	var ve *user.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "The email has already been taken.", ve.Fields["email"])

	_, err = s.UpdateProfile(ctx, again.ID, "Bob", "ANN@x.com")
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
}
