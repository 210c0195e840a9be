// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

func signup(t *testing.T, f *fixture, username, email string) {
	t.Helper()
	_, err := f.service.Signup(context.Background(), auth.SignupInput{Username: username, Email: email})
	require.NoError(t, err)
}

func issue(f *fixture, username, code string) (*auth.AccessToken, error) {
	return f.service.IssueToken(context.Background(), auth.TokenInput{Username: username, ConfirmationCode: code})
}

/*
TestSignup_CreatesInactiveIdentity covers the first signup of an unseen pair:
exactly one inactive user and exactly one live code.
*/
func TestSignup_CreatesInactiveIdentity(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Signup(context.Background(), auth.SignupInput{Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)
	assert.Equal(t, &auth.SignupResult{Username: "alice", Email: "alice@x.com"}, result)

	require.Equal(t, 1, f.users.count())
	user, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.False(t, user.IsSuperuser)

	sent := f.notifier.last(t, "alice@x.com")
	assert.Len(t, sent, 6)
	assert.Equal(t, 1, f.notifier.total())

	stored, err := f.codes.Get(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, sent, stored)
}

/*
TestSignup_ReissueScenario walks signup, signup again, verify with the old
code, then verify with the new one.
*/
func TestSignup_ReissueScenario(t *testing.T) {
	f := newFixture(t)

	signup(t, f, "alice", "alice@x.com")
	oldCode := f.notifier.last(t, "alice@x.com")

	signup(t, f, "alice", "alice@x.com")
	newCode := f.notifier.last(t, "alice@x.com")
	require.Equal(t, "100001", oldCode)
	require.Equal(t, "100002", newCode)
	assert.Equal(t, 1, f.users.count(), "reissue must not create a duplicate")

	_, err := issue(f, "alice", oldCode)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	token, err := issue(f, "alice", newCode)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	user, err := f.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	claims, err := f.tokens.VerifyToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, sec.RoleUser, claims.Role)
	assert.False(t, claims.Superuser)
}

/*
TestSignup_UsernameCollision checks that a known username with another email
is rejected and leaves both the directory and the code store untouched.
*/
func TestSignup_UsernameCollision(t *testing.T) {
	f := newFixture(t)

	signup(t, f, "bob", "bob@x.com")
	bobCode := f.notifier.last(t, "bob@x.com")

	_, err := f.service.Signup(context.Background(), auth.SignupInput{Username: "bob", Email: "other@x.com"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	user, err := f.users.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", user.Email)

	_, err = f.codes.Get(context.Background(), "other@x.com")
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)

	stored, err := f.codes.Get(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, bobCode, stored)
	assert.Equal(t, 1, f.notifier.total())
}

func TestSignup_EmailCollision(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "carol", "carol@x.com")

	_, err := f.service.Signup(context.Background(), auth.SignupInput{Username: "caroline", Email: "carol@x.com"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.notifier.total())
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		field    string
	}{
		{"reserved_me", "me", "me@x.com", auth.FieldUsername},
		{"empty_username", "", "a@x.com", auth.FieldUsername},
		{"bad_charset", "al ice", "a@x.com", auth.FieldUsername},
		{"too_long_username", strings.Repeat("a", 151), "a@x.com", auth.FieldUsername},
		{"bad_email", "alice", "not-an-email", auth.FieldEmail},
		{"empty_email", "alice", "", auth.FieldEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.Signup(context.Background(), auth.SignupInput{Username: tt.username, Email: tt.email})
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

			fields := make([]string, 0, len(appErr.Details))
			for _, detail := range appErr.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.field)

			assert.Zero(t, f.users.count())
			assert.Zero(t, f.notifier.total())
		})
	}
}

func TestSignup_NormalizesIdentity(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Signup(context.Background(), auth.SignupInput{Username: " ａｌｉｃｅ ", Email: "alice@X.COM"})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, "alice@x.com", result.Email)

	// Same identity typed differently is a reissue, not a collision.
	signup(t, f, "alice", "alice@x.com")
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 2, f.notifier.total())
}

/*
TestSignup_ReissueDeactivates covers the active -> pending -> active cycle.
*/
func TestSignup_ReissueDeactivates(t *testing.T) {
	f := newFixture(t)

	signup(t, f, "dave", "dave@x.com")
	_, err := issue(f, "dave", f.notifier.last(t, "dave@x.com"))
	require.NoError(t, err)

	signup(t, f, "dave", "dave@x.com")
	user, err := f.users.FindByUsername(context.Background(), "dave")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = issue(f, "dave", f.notifier.last(t, "dave@x.com"))
	require.NoError(t, err)
	user, err = f.users.FindByUsername(context.Background(), "dave")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

/*
TestSignup_NotificationFailure checks that the code is stored before delivery
is attempted and that the failure is reported as a 503.
*/
func TestSignup_NotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("relay down")

	_, err := f.service.Signup(context.Background(), auth.SignupInput{Username: "erin", Email: "erin@x.com"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOTIFICATION_FAILED", appErr.Code)
	assert.Equal(t, 503, appErr.HTTPStatus)

	stored, err := f.codes.Get(context.Background(), "erin@x.com")
	require.NoError(t, err)
	assert.Len(t, stored, 6)
	assert.Equal(t, 1, f.users.count())
}

func TestSignup_CodeStoreFailureIsInfrastructure(t *testing.T) {
	f := newFixture(t)
	failing := auth.NewService(f.users, failingStore{}, &sequenceGenerator{}, f.notifier, f.tokens,
		auth.Lifetimes{Code: testCodeTTL, Token: testTokenTTL})

	_, err := failing.Signup(context.Background(), auth.SignupInput{Username: "frank", Email: "frank@x.com"})
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
	assert.Zero(t, f.notifier.total())
}

/*
TestSignup_ConcurrentCreate simulates losing the insert race to an identical
signup; the retry must fall into the reissue path.
*/
func TestSignup_ConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	f.users.beforeCreate = func(m *memUsers) {
		m.mu.Lock()
		defer m.mu.Unlock()
		require.NoError(t, m.insert(auth.User{ID: "winner", Username: "gina", Email: "gina@x.com", Role: sec.RoleUser}))
	}

	signup(t, f, "gina", "gina@x.com")
	assert.Equal(t, 1, f.users.count())

	_, err := issue(f, "gina", f.notifier.last(t, "gina@x.com"))
	assert.NoError(t, err)
}

func TestIssueToken_Expired(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "hank", "hank@x.com")
	code := f.notifier.last(t, "hank@x.com")

	f.clock.Advance(testCodeTTL)

	_, err := issue(f, "hank", code)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	user, err := f.users.FindByUsername(context.Background(), "hank")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestIssueToken_UnknownUsernameLooksLikeInvalidCode(t *testing.T) {
	f := newFixture(t)

	_, err := issue(f, "nobody", "123456")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestIssueToken_WrongCode(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "ivan", "ivan@x.com")
	code := f.notifier.last(t, "ivan@x.com")

	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	_, err := issue(f, "ivan", wrong)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestIssueToken_CodeCannotBeReplayed(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "judy", "judy@x.com")
	code := f.notifier.last(t, "judy@x.com")

	_, err := issue(f, "judy", code)
	require.NoError(t, err)

	_, err = issue(f, "judy", code)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestIssueToken_MalformedInput(t *testing.T) {
	f := newFixture(t)

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := issue(f, "alice", code)
		appErr := apperr.As(err)
		require.NotNil(t, appErr, code)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code, code)
	}
}

func TestIssueToken_CarriesRoleAtVerification(t *testing.T) {
	f := newFixture(t)
	signup(t, f, "kate", "kate@x.com")

	user, err := f.users.FindByUsername(context.Background(), "kate")
	require.NoError(t, err)
	user.Role = sec.RoleModerator
	require.NoError(t, f.users.Update(context.Background(), user))

	token, err := issue(f, "kate", f.notifier.last(t, "kate@x.com"))
	require.NoError(t, err)

	claims, err := f.tokens.VerifyToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, claims.Role)
}

func TestIssueToken_DirectoryFailureIsInfrastructure(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("connection refused")

	_, err := issue(f, "alice", "123456")
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
}

// failingStore is a [auth.CodeStore] whose backend is unreachable.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Put(context.Context, string, string, time.Duration) error { return errStoreDown }
func (failingStore) Get(context.Context, string) (string, error)              { return "", errStoreDown }
func (failingStore) Delete(context.Context, string, string) error             { return errStoreDown }
