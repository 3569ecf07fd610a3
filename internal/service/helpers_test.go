package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/ticketing/userservice/internal/config"
	"github.com/ticketing/userservice/internal/models"
	"github.com/ticketing/userservice/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testEpoch sits on a whole second so exp - now equals the configured TTL.
var testEpoch = time.Unix(1_700_000_000, 0)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestJWTService(t *testing.T, accessExpiry, refreshExpiry time.Duration) (*JWTService, *testClock) {
	t.Helper()

	svc, err := NewJWTService(&config.JWTConfig{
		SecretKey:     testSecret,
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	}, newTestLogger())
	require.NoError(t, err)

	clock := &testClock{now: testEpoch}
	svc.now = clock.Now
	return svc, clock
}

func newTestRedisStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisTokenStore(client, time.Second, newTestLogger()), mr
}

// memoryUsers is an in-memory UserRepository.
type memoryUsers struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int64
}

func newMemoryUsers(users ...*models.User) *memoryUsers {
	m := &memoryUsers{users: make(map[string]*models.User)}
	for _, u := range users {
		copied := *u
		m.users[u.Email] = &copied
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return repository.ErrUserExists
	}
	m.nextID++
	user.ID = m.nextID
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memoryUsers) setRole(email string, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[email].Role = role
}

// untouchableStore fails the test on any call.
type untouchableStore struct {
	t *testing.T
}

func (s untouchableStore) Set(context.Context, string, string, time.Duration) error {
	s.t.Fatal("store Set called")
	return nil
}

func (s untouchableStore) Get(context.Context, string) (string, bool, error) {
	s.t.Fatal("store Get called")
	return "", false, nil
}

func (s untouchableStore) Exists(context.Context, string) (bool, error) {
	s.t.Fatal("store Exists called")
	return false, nil
}

func (s untouchableStore) Delete(context.Context, string) error {
	s.t.Fatal("store Delete called")
	return nil
}
