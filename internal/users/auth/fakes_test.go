// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # In-memory Identity Directory

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]auth.User
	err   error
	order int

	// beforeCreate runs once, just before the next Create, to simulate a concurrent insert.
	beforeCreate func(*memUsers)
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]auth.User)}
}

func (m *memUsers) find(match func(auth.User) bool) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.byID {
		if match(user) {
			copied := user
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return m.find(func(u auth.User) bool { return u.ID == id })
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return m.find(func(u auth.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return m.find(func(u auth.User) bool { return u.Email == email })
}

// insert enforces the unique username and email constraints.
func (m *memUsers) insert(user auth.User) error {
	for _, existing := range m.byID {
		if existing.Username == user.Username || existing.Email == user.Email {
			return dberr.ErrDuplicate
		}
	}
	m.order++
	user.CreatedAt = time.Unix(int64(m.order), 0)
	m.byID[user.ID] = user
	return nil
}

func (m *memUsers) Create(_ context.Context, user *auth.User) error {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	return m.insert(*user)
}

func (m *memUsers) Update(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[user.ID]
	if !ok {
		return auth.ErrUserNotFound
	}
	for id, existing := range m.byID {
		if id != user.ID && (existing.Username == user.Username || existing.Email == user.Email) {
			return dberr.ErrDuplicate
		}
	}

	updated := *user
	updated.IsActive = current.IsActive
	updated.IsSuperuser = current.IsSuperuser
	m.byID[user.ID] = updated
	return nil
}

func (m *memUsers) SetActive(_ context.Context, id string, expected, next bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	user, ok := m.byID[id]
	if !ok || user.IsActive != expected {
		return false, nil
	}
	user.IsActive = next
	m.byID[id] = user
	return true, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) List(_ context.Context, filter auth.ListFilter) ([]*auth.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches := make([]*auth.User, 0)
	for _, user := range m.byID {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Search)) {
			continue
		}
		copied := user
		matches = append(matches, &copied)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Username < matches[j].Username })

	total := len(matches)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matches[start:end], total, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// # Notifier

type captureNotifier struct {
	mu   sync.Mutex
	sent map[string][]string
	err  error
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{sent: make(map[string][]string)}
}

func (n *captureNotifier) Send(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	n.sent[email] = append(n.sent[email], code)
	return nil
}

func (n *captureNotifier) last(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()

	codes := n.sent[email]
	require.NotEmpty(t, codes, "no code sent to %s", email)
	return codes[len(codes)-1]
}

func (n *captureNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, codes := range n.sent {
		count += len(codes)
	}
	return count
}

// # Code Generator

// sequenceGenerator yields distinct codes so tests can tell old and new apart.
type sequenceGenerator struct {
	mu   sync.Mutex
	next int
	err  error
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}
	g.next++
	return fmt.Sprintf("%06d", 100000+g.next), nil
}

// # Fixture

const (
	testCodeTTL  = 24 * time.Hour
	testTokenTTL = time.Hour
)

type fixture struct {
	service  *auth.Service
	users    *memUsers
	codes    *auth.MemoryCodeStore
	notifier *captureNotifier
	tokens   *sec.TokenService
	clock    *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := sec.NewHMACTokenService([]byte(strings.Repeat("s", 32)), constants.AuthIssuer)
	require.NoError(t, err)

	f := &fixture{
		users:    newMemUsers(),
		codes:    auth.NewMemoryCodeStore(clock.Now),
		notifier: newCaptureNotifier(),
		tokens:   tokens,
		clock:    clock,
	}
	f.service = auth.NewService(f.users, f.codes, &sequenceGenerator{}, f.notifier, f.tokens,
		auth.Lifetimes{Code: testCodeTTL, Token: testTokenTTL})
	return f
}
