package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davberk/microblog/internal/models"
	"github.com/davberk/microblog/internal/store"
)

// ---- fakes ----

type fakeUsers struct {
	byEmail   map[string]*models.User
	byID      map[string]*models.User
	createErr error
	seq       int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (f *fakeUsers) CreateUser(_ context.Context, username, email, hashedPw string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	u := &models.User{
		ID:       fmt.Sprintf("u%d", f.seq),
		Username: username,
		Email:    email,
		Password: hashedPw,
	}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

type fakeTokens struct {
	m   map[string]string
	seq int
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{m: make(map[string]string)}
}

func (f *fakeTokens) Create(_ context.Context, userID string) (string, error) {
	f.seq++
	token := fmt.Sprintf("t%d", f.seq)
	f.m[token] = userID
	return token, nil
}

func (f *fakeTokens) Get(_ context.Context, token string) (string, error) {
	return f.m[token], nil
}

func (f *fakeTokens) Delete(_ context.Context, token string) error {
	delete(f.m, token)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(hash, plaintext string) error {
	if hash != "hashed:"+plaintext {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService() (*Service, *fakeUsers, *fakeTokens) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	return NewService(users, tokens, fakeHasher{}), users, tokens
}

// ---- tests ----

func TestRegisterRequiresAllFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, tt := range []struct{ username, email, password string }{
		{"", "a@x.com", "pw1"},
		{"alice", "", "pw1"},
		{"alice", "a@x.com", ""},
	} {
		_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, users, _ := newTestService()

	user, err := svc.Register(context.Background(), "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "hashed:pw1", users.byID[user.ID].Password)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, users, _ := newTestService()
	users.createErr = store.ErrDuplicate

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw1")
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "nobody@x.com", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success opens a session", func(t *testing.T) {
		user, token, err := svc.Authenticate(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		actor, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, actor.ID)
	})
}

func TestResolveWithoutSessionIsAnonymous(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	actor, err := svc.Resolve(ctx, "")
	require.NoError(t, err)
	assert.True(t, actor.Anonymous())

	actor, err = svc.Resolve(ctx, "no-such-token")
	require.NoError(t, err)
	assert.True(t, actor.Anonymous())
}

func TestTerminateIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	_, token, err := svc.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, svc.Terminate(ctx, token))
	require.NoError(t, svc.Terminate(ctx, token)) // already gone
	require.NoError(t, svc.Terminate(ctx, ""))

	actor, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, actor.Anonymous())
}
