package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-admin-panel/pkg/utils"
)

func validInput() Input {
	return Input{Name: "Ann", Email: "ann@x.com", Role: "admin", Password: "password1", PasswordConfirmation: "password1"}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func TestCreate(t *testing.T) {
	s := NewService(newMemRepo())
	m, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.ID)
	assert.Equal(t, "admin", m.Role)
	assert.True(t, utils.CheckPassword("password1", m.PasswordHash))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing name", func(in *Input) { in.Name = "  " }, "name"},
		{"missing email", func(in *Input) { in.Email = "" }, "email"},
		{"bad email", func(in *Input) { in.Email = "not-an-email" }, "email"},
		{"bad role", func(in *Input) { in.Role = "root" }, "role"},
		{"missing role", func(in *Input) { in.Role = "" }, "role"},
		{"missing password", func(in *Input) { in.Password, in.PasswordConfirmation = "", "" }, "password"},
		{"short password", func(in *Input) { in.Password, in.PasswordConfirmation = "short", "short" }, "password"},
		{"confirmation mismatch", func(in *Input) { in.PasswordConfirmation = "different1" }, "password_confirmation"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(newMemRepo())
			in := validInput()
			tc.mutate(&in)
			_, err := s.Create(context.Background(), in)
			assert.Contains(t, fieldErrors(t, err), tc.field)
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := NewService(newMemRepo())
	_, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Email = "ANN@x.com"
	_, err = s.Create(context.Background(), in)
	assert.Equal(t, "The email has already been taken.", fieldErrors(t, err)["email"])
}

func TestRegisterForcesUserRole(t *testing.T) {
	s := NewService(newMemRepo())
	m, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "user", m.Role)
}

func TestUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	m, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	oldHash := m.PasswordHash

	upd, err := s.Update(ctx, m.ID, Input{Name: "Ann Lee", Email: "ann@x.com", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", upd.Name)
	assert.Equal(t, "user", upd.Role)
	assert.Equal(t, oldHash, upd.PasswordHash)

	upd, err = s.Update(ctx, m.ID, Input{Name: "Ann", Email: "ann@x.com", Role: "user", Password: "newpassword", PasswordConfirmation: "newpassword"})
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("newpassword", upd.PasswordHash))
}

func TestUpdateEmailTakenByOther(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	_, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	in := validInput()
	in.Email = "bob@x.com"
	bob, err := s.Create(ctx, in)
	require.NoError(t, err)

	_, err = s.Update(ctx, bob.ID, Input{Name: "Bob", Email: "ann@x.com", Role: "user"})
	assert.Contains(t, fieldErrors(t, err), "email")

	_, err = s.Update(ctx, 99, Input{Name: "Bob", Email: "bob@x.com", Role: "user"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// dupOnWrite 预检查通过后唯一索引才冲突
type dupOnWrite struct{ *memRepo }

func (dupOnWrite) Update(context.Context, *UserModel) error {
	return errors.New("UNIQUE constraint failed: users.email")
}

func TestUpdateMapsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	mem := newMemRepo()
	m, err := NewService(mem).Create(ctx, validInput())
	require.NoError(t, err)

	s := NewService(dupOnWrite{mem})
	_, err = s.Update(ctx, m.ID, Input{Name: "Ann", Email: "bob@x.com", Role: "admin"})
	assert.Equal(t, "The email has already been taken.", fieldErrors(t, err)["email"])
	_, err = s.UpdateProfile(ctx, m.ID, "Ann", "bob@x.com")
	assert.Equal(t, "The email has already been taken.", fieldErrors(t, err)["email"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	m, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, m.ID, m.ID), ErrSelfDelete)
	require.NoError(t, s.Delete(ctx, 100, m.ID))
	assert.ErrorIs(t, s.Delete(ctx, 100, m.ID), ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	_, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	m, err := s.Authenticate(ctx, " ANN@x.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", m.Name)

	_, err = s.Authenticate(ctx, "ann@x.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "ghost@x.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordAndAccount(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	m, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	err = s.UpdatePassword(ctx, m.ID, PasswordInput{CurrentPassword: "wrong", Password: "password2", PasswordConfirmation: "password2"})
	assert.Contains(t, fieldErrors(t, err), "current_password")

	require.NoError(t, s.UpdatePassword(ctx, m.ID, PasswordInput{CurrentPassword: "password1", Password: "password2", PasswordConfirmation: "password2"}))

	err = s.DeleteAccount(ctx, m.ID, "password1")
	assert.Contains(t, fieldErrors(t, err), "password")
	require.NoError(t, s.DeleteAccount(ctx, m.ID, "password2"))
}

func TestUpdateProfileResetsVerification(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewService(repo)
	m, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	upd, err := s.UpdateProfile(ctx, m.ID, "Ann", "ann@y.com")
	require.NoError(t, err)
	assert.Nil(t, upd.EmailVerifiedAt)
	assert.Equal(t, "ann@y.com", upd.Email)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	created, err := s.EnsureAdmin(ctx, "", "root@x.com", "password1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, "", "root@x.com", "password1")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestListPaging(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo())
	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		in := validInput()
		in.Email = e
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}

	p, err := s.List(ctx, 2, 2, "/api/v1/admin/users")
	require.NoError(t, err)
	assert.Len(t, p.Data, 1)
	assert.Equal(t, 3, p.From)
	assert.Equal(t, 3, p.To)
	assert.EqualValues(t, 3, p.Total)
	assert.Equal(t, 2, p.LastPage)
}
