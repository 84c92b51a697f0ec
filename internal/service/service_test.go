package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/cache"
	"todo-collab/pkg/database"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memCache is an in-process cache.Cache used to observe caching behavior.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type fixture struct {
	svc   *Services
	store *repository.Store
	cache *memCache
	db    *sqlx.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.ConnectSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.CreateTablesIfNotExists(context.Background(), db))

	store := repository.NewStore(db)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	c := newMemCache()
	svc := New(store, c)
	svc.Users.PasswordCost = bcrypt.MinCost
	return &fixture{svc: svc, store: store, cache: c, db: db}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.svc.Users.SignUp(context.Background(), email, email, "password123")
	require.NoError(t, err)
	return u
}

// countRows counts the rows of table that belong to a group task.
func (f *fixture) countRows(t *testing.T, table, taskID string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.GetContext(context.Background(), &n,
		f.db.Rebind("SELECT COUNT(*) FROM "+table+" WHERE group_task_id = ?"), taskID))
	return n
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), err.Error())
}

func strPtr(s string) *string { return &s }

func TestKindOfAndMessage(t *testing.T) {
	err := forbidden("Unauthorized")
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, "Unauthorized", MessageOf(err, "fallback"))

	cause := errors.New("connection reset")
	err = internal("Failed to fetch tasks", cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestLookupError(t *testing.T) {
	err := lookupError(repository.ErrNotFound, "Task not found", "Failed")
	requireKind(t, err, KindNotFound)
	assert.Equal(t, "Task not found", MessageOf(err, ""))

	err = lookupError(errors.New("boom"), "Task not found", "Failed")
	requireKind(t, err, KindInternal)
}
