package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/database/dbtest"
)

func newStoredUser(email string) *auth.User {
	return &auth.User{
		Email:           email,
		NormalizedEmail: auth.NormalizeEmail(email),
		PasswordHash:    "$2a$04$abcdefghijklmnopqrstuuAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		SecurityStamp:   "stamp-1",
		LockoutEnabled:  true,
	}
}

func TestPostgresUser_CreateAndGet(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := auth.NewRepository(pool)
	ctx := context.Background()

	u := newStoredUser("Alice@Example.com")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice@Example.com", byID.Email)
	assert.False(t, byID.EmailConfirmed)
	assert.Zero(t, byID.Roles.Len())

	byEmail, err := repo.GetByNormalizedEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestPostgresUser_DuplicateEmail(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := auth.NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStoredUser("bob@example.com")))
	err := repo.Create(ctx, newStoredUser("BOB@example.com"))
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestPostgresUser_CreateWithRoles(t *testing.T) {
	pool := dbtest.NewPool(t)
	users := auth.NewRepository(pool)
	roles := auth.NewRoleRepository(pool)
	ctx := context.Background()

	require.NoError(t, roles.Ensure(ctx, "User"))
	role, err := roles.GetByNormalizedName(ctx, "USER")
	require.NoError(t, err)

	u := newStoredUser("frank@example.com")
	require.NoError(t, users.Create(ctx, u, role.ID))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, got.Roles.Names())

	err = users.Create(ctx, newStoredUser("gina@example.com"), uuid.New())
	assert.ErrorIs(t, err, auth.ErrRoleNotFound)

	_, err = users.GetByNormalizedEmail(ctx, "gina@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound, "user insert rolled back")
}

func TestPostgresUser_NotFound(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := auth.NewRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = repo.GetByNormalizedEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestPostgresUser_ConfirmEmailIsCompareAndSwap(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := auth.NewRepository(pool)
	ctx := context.Background()

	u := newStoredUser("carol@example.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.ConfirmEmail(ctx, u.ID, "stamp-1", "stamp-2"))

	err := repo.ConfirmEmail(ctx, u.ID, "stamp-1", "stamp-3")
	assert.ErrorIs(t, err, auth.ErrStaleSecurityStamp)

	err = repo.ConfirmEmail(ctx, u.ID, "stamp-2", "stamp-3")
	assert.ErrorIs(t, err, auth.ErrStaleSecurityStamp, "already confirmed")

	err = repo.ConfirmEmail(ctx, uuid.New(), "stamp-1", "stamp-2")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailConfirmed)
	assert.Equal(t, "stamp-2", got.SecurityStamp)
}

func TestPostgresUser_FailedAccessAndLockout(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := auth.NewRepository(pool)
	ctx := context.Background()

	u := newStoredUser("dave@example.com")
	require.NoError(t, repo.Create(ctx, u))

	end, err := repo.RecordFailedAccess(ctx, u.ID, 2, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, end)

	end, err = repo.RecordFailedAccess(ctx, u.ID, 2, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, end)
	assert.True(t, end.After(time.Now().Add(-time.Second)))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AccessFailedCount)
	assert.True(t, got.IsLockedOut(time.Now()))

	require.NoError(t, repo.ResetFailedAccess(ctx, u.ID))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockoutEnd)

	assert.ErrorIs(t, repo.ResetFailedAccess(ctx, uuid.New()), auth.ErrUserNotFound)
}

func TestPostgresRole_EnsureIsConcurrencySafe(t *testing.T) {
	pool := dbtest.NewPool(t)
	roles := auth.NewRoleRepository(pool)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, roles.Ensure(ctx, "Admin"))
		}()
	}
	wg.Wait()

	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM roles WHERE normalized_name = 'ADMIN'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgresRole_MembershipFlow(t *testing.T) {
	pool := dbtest.NewPool(t)
	users := auth.NewRepository(pool)
	roles := auth.NewRoleRepository(pool)
	ctx := context.Background()

	u := newStoredUser("erin@example.com")
	require.NoError(t, users.Create(ctx, u))

	_, err := roles.GetByNormalizedName(ctx, "ADMIN")
	assert.ErrorIs(t, err, auth.ErrRoleNotFound)

	require.NoError(t, roles.Ensure(ctx, "Admin"))
	role, err := roles.GetByNormalizedName(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)

	in, err := roles.IsMember(ctx, u.ID, "ADMIN")
	require.NoError(t, err)
	assert.False(t, in)

	require.NoError(t, roles.AddMember(ctx, u.ID, role.ID))
	require.NoError(t, roles.AddMember(ctx, u.ID, role.ID))

	in, err = roles.IsMember(ctx, u.ID, "ADMIN")
	require.NoError(t, err)
	assert.True(t, in)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, got.Roles.Names())

	assert.ErrorIs(t, roles.AddMember(ctx, uuid.New(), role.ID), auth.ErrUserNotFound)
	assert.ErrorIs(t, roles.AddMember(ctx, u.ID, uuid.New()), auth.ErrRoleNotFound)

	all, err := roles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
