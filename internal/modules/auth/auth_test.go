package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("storage off")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("storage off") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("storage off") }

func setupIdentityTest(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return NewStore(context.Background(), mem, bcrypt.MinCost, logging.Discard()), mem
}

func TestSignUp_AuthenticatesImmediately(t *testing.T) {
	s, _ := setupIdentityTest(t)

	id, err := s.SignUp(context.Background(), "asha@example.com", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "local-asha@example.com", Email: "asha@example.com", Name: "asha"}, id)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, id, current)
	assert.Equal(t, "jerseyx_orders_asha@example.com", s.PartitionKey())
}

func TestSignIn_NoAccount(t *testing.T) {
	s, _ := setupIdentityTest(t)

	_, err := s.SignIn(context.Background(), "asha@example.com", "pw")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.False(t, s.Authenticated())
}

func TestSignIn_ExactMatchOnly(t *testing.T) {
	s, _ := setupIdentityTest(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "asha@example.com", "pw", "Asha")
	require.NoError(t, err)
	s.SignOut(ctx)

	_, err = s.SignIn(ctx, "ASHA@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "asha@example.com", "PW")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, s.Authenticated())

	id, err := s.SignIn(ctx, "asha@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Asha", id.Name)
}

func TestSignUp_LongPassword(t *testing.T) {
	s, _ := setupIdentityTest(t)
	ctx := context.Background()
	long := strings.Repeat("x", 73)

	_, err := s.SignUp(ctx, "asha@example.com", long, "")
	require.NoError(t, err)
	s.SignOut(ctx)

	_, err = s.SignIn(ctx, "asha@example.com", long)
	require.NoError(t, err)
	s.SignOut(ctx)

	// differs only past byte 72
	_, err = s.SignIn(ctx, "asha@example.com", long+"y")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_OverwritesPreviousAccount(t *testing.T) {
	s, _ := setupIdentityTest(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "first@example.com", "one", "")
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "second@example.com", "two", "")
	require.NoError(t, err)
	s.SignOut(ctx)

	_, err = s.SignIn(ctx, "first@example.com", "one")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "second@example.com", "two")
	assert.NoError(t, err)
}

func TestSignOut_GuestPartition(t *testing.T) {
	s, _ := setupIdentityTest(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "asha@example.com", "pw", "")
	require.NoError(t, err)

	s.SignOut(ctx)
	assert.False(t, s.Authenticated())
	assert.Equal(t, "jerseyx_orders_guest", s.PartitionKey())
}

func TestNewStore_RestoresIdentity(t *testing.T) {
	s, mem := setupIdentityTest(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "asha@example.com", "pw", "")
	require.NoError(t, err)

	restored := NewStore(ctx, mem, bcrypt.MinCost, logging.Discard())
	id, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", id.Email)

	s.SignOut(ctx)
	assert.False(t, NewStore(ctx, mem, bcrypt.MinCost, logging.Discard()).Authenticated())
}

func TestSignUp_StorageFailure(t *testing.T) {
	s := NewStore(context.Background(), failingStore{}, bcrypt.MinCost, logging.Discard())

	_, err := s.SignUp(context.Background(), "asha@example.com", "pw", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, s.Authenticated())
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "jerseyx_orders_guest", PartitionKey(nil))
	assert.Equal(t, "jerseyx_orders_a@b.co", PartitionKey(&Identity{ID: "local-a@b.co", Email: "a@b.co"}))
	assert.Equal(t, "jerseyx_orders_u-1", PartitionKey(&Identity{ID: "u-1"}))
}
