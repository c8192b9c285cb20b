package services

import (
	"context"
	"testing"

	"github.com/shoptrack/apiserver/internal/store"
	"github.com/shoptrack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]types.User
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, exists := f.users[username]
	if !exists {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = len(f.users) + 1
	f.users[user.Username] = user
	return user, nil
}

func newFakeUserRepo(t *testing.T, username, password, role string) *fakeUserRepo {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeUserRepo{users: map[string]types.User{
		username: {ID: 1, Username: username, Role: role, PasswordHash: string(hashed)},
	}}
}

func TestVerifyCredentials(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(t, "alice", "hunter2", "advisor"))

	user, err := svc.VerifyCredentials(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "advisor", user.Role)
}

func TestVerifyCredentialsUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(t, "alice", "hunter2", "advisor"))

	_, err := svc.VerifyCredentials(context.Background(), "mallory", "hunter2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyCredentialsWrongPassword(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(t, "alice", "hunter2", "advisor"))

	_, err := svc.VerifyCredentials(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestCreateUser(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]types.User{}}
	svc := NewUserService(repo)

	user, err := svc.Create(context.Background(), "bob", "", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "user", user.Role, "empty role falls back to the default")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	verified, err := svc.VerifyCredentials(context.Background(), "bob", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newFakeUserRepo(t, "alice", "hunter2", "advisor")
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), "alice", "tech", "another")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, repo.users, 1)
	assert.Equal(t, "advisor", repo.users["alice"].Role, "existing account is untouched")
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{users: map[string]types.User{}})

	_, err := svc.Create(context.Background(), "  ", "user", "s3cret")
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), "bob", "user", "")
	assert.Error(t, err)
}
