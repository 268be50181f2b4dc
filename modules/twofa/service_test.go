package twofa_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contractvault/modules/twofa"
	"github.com/dmitrymomot/contractvault/pkg/email"
	"github.com/dmitrymomot/contractvault/pkg/totp"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

var testEncKey = []byte("0123456789abcdef0123456789abcdef")

type fakeStorage struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*auth.User
	pending map[uuid.UUID]*twofa.PendingSecret
	failErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:   make(map[uuid.UUID]*auth.User),
		pending: make(map[uuid.UUID]*twofa.PendingSecret),
	}
}

func (f *fakeStorage) addUser(email string, enabled bool, encryptedSecret *string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	f.users[id] = &auth.User{ID: id, Email: email, TwoFactorEnabled: enabled, TOTPSecret: encryptedSecret}
	return id
}

func (f *fakeStorage) GetUser(_ context.Context, userID uuid.UUID) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return nil, f.failErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStorage) EnableTwoFactor(_ context.Context, userID uuid.UUID, encryptedSecret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return f.failErr
	}
	u, ok := f.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.TwoFactorEnabled = true
	u.TOTPSecret = &encryptedSecret
	delete(f.pending, userID)
	return nil
}

func (f *fakeStorage) UpsertPendingSecret(_ context.Context, userID uuid.UUID, encryptedSecret string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return f.failErr
	}
	f.pending[userID] = &twofa.PendingSecret{
		ID:        uuid.New(),
		UserID:    userID,
		Secret:    encryptedSecret,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeStorage) PendingSecret(_ context.Context, userID uuid.UUID) (*twofa.PendingSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return nil, f.failErr
	}
	p, ok := f.pending[userID]
	if !ok {
		return nil, twofa.ErrNoPendingSetup
	}
	copied := *p
	return &copied, nil
}

// testClock is a mutable time source for pinning code windows.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T, storage twofa.Storage, clock *testClock, opts ...twofa.ServiceOption) *twofa.Service {
	t.Helper()

	opts = append(opts, twofa.WithClock(clock.Now))
	svc, err := twofa.NewService(storage, testEncKey, twofa.DefaultConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func TestBeginSetup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("provisions pending secret with QR code", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID := storage.addUser("user@example.com", false, nil)

		result, err := svc.BeginSetup(ctx, userID)
		require.NoError(t, err)

		assert.Regexp(t, "^[A-Z2-7]+$", result.Secret)
		assert.True(t, strings.HasPrefix(result.QRCodeDataURI, "data:image/png;base64,"))
		assert.Contains(t, result.OTPAuthURI, "otpauth://totp/ContractVault:user%40example.com")
		assert.Contains(t, result.OTPAuthURI, "secret="+result.Secret)

		// The stored pending secret is encrypted and expires in 10 minutes.
		pending, err := storage.PendingSecret(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, result.Secret, pending.Secret)
		assert.Equal(t, clock.Now().Add(10*time.Minute), pending.ExpiresAt)

		decrypted, err := totp.DecryptSecret(pending.Secret, testEncKey)
		require.NoError(t, err)
		assert.Equal(t, result.Secret, decrypted)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newTestService(t, storage, newTestClock())
		secret := "ENCRYPTED"
		userID := storage.addUser("user@example.com", true, &secret)

		_, err := svc.BeginSetup(ctx, userID)
		assert.ErrorIs(t, err, twofa.ErrAlreadyEnabled)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, newFakeStorage(), newTestClock())
		_, err := svc.BeginSetup(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("repeat setup replaces the pending secret", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID := storage.addUser("user@example.com", false, nil)

		first, err := svc.BeginSetup(ctx, userID)
		require.NoError(t, err)
		second, err := svc.BeginSetup(ctx, userID)
		require.NoError(t, err)
		require.NotEqual(t, first.Secret, second.Secret)

		// A code from the superseded secret no longer verifies.
		oldCode, err := totp.CodeAt(first.Secret, clock.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Verify(ctx, userID, oldCode, true), twofa.ErrInvalidCode)

		newCode, err := totp.CodeAt(second.Secret, clock.Now())
		require.NoError(t, err)
		assert.NoError(t, svc.Verify(ctx, userID, newCode, true))
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		storage.failErr = twofa.ErrStorageFailure
		svc := newTestService(t, storage, newTestClock())

		_, err := svc.BeginSetup(ctx, uuid.New())
		assert.ErrorIs(t, err, twofa.ErrStorageFailure)
	})
}

func TestVerifySetup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setupUser := func(t *testing.T, storage *fakeStorage, clock *testClock, svc *twofa.Service) (uuid.UUID, string) {
		t.Helper()
		userID := storage.addUser("user@example.com", false, nil)
		result, err := svc.BeginSetup(ctx, userID)
		require.NoError(t, err)
		return userID, result.Secret
	}

	t.Run("correct code promotes the secret", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, secret := setupUser(t, storage, clock, svc)

		code, err := totp.CodeAt(secret, clock.Now())
		require.NoError(t, err)
		require.NoError(t, svc.Verify(ctx, userID, code, true))

		user, err := storage.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.True(t, user.TwoFactorEnabled)
		require.NotNil(t, user.TOTPSecret)

		active, err := totp.DecryptSecret(*user.TOTPSecret, testEncKey)
		require.NoError(t, err)
		assert.Equal(t, secret, active)

		// The pending record is consumed by promotion.
		_, err = storage.PendingSecret(ctx, userID)
		assert.ErrorIs(t, err, twofa.ErrNoPendingSetup)
	})

	t.Run("wrong code leaves setup pending", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, _ := setupUser(t, storage, clock, svc)

		assert.ErrorIs(t, svc.Verify(ctx, userID, "000000", true), twofa.ErrInvalidCode)

		user, err := storage.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.False(t, user.TwoFactorEnabled)

		_, err = storage.PendingSecret(ctx, userID)
		assert.NoError(t, err)
	})

	t.Run("malformed code reads as invalid", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, _ := setupUser(t, storage, clock, svc)

		for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
			assert.ErrorIs(t, svc.Verify(ctx, userID, code, true), twofa.ErrInvalidCode, "code %q", code)
		}
	})

	t.Run("expired pending setup", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, secret := setupUser(t, storage, clock, svc)

		clock.Advance(10*time.Minute + time.Second)

		code, err := totp.CodeAt(secret, clock.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Verify(ctx, userID, code, true), twofa.ErrNoPendingSetup)
	})

	t.Run("no pending setup", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newTestService(t, storage, newTestClock())
		userID := storage.addUser("user@example.com", false, nil)

		assert.ErrorIs(t, svc.Verify(ctx, userID, "123456", true), twofa.ErrNoPendingSetup)
	})

	t.Run("already enabled", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newTestService(t, storage, newTestClock())
		secret := "ENCRYPTED"
		userID := storage.addUser("user@example.com", true, &secret)

		assert.ErrorIs(t, svc.Verify(ctx, userID, "123456", true), twofa.ErrAlreadyEnabled)
	})

	t.Run("sends the security notification", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		sent := make(chan email.Message, 1)
		svc := newTestService(t, storage, clock, twofa.WithMailer(chanMailer(sent)))
		userID, secret := setupUser(t, storage, clock, svc)

		code, err := totp.CodeAt(secret, clock.Now())
		require.NoError(t, err)
		require.NoError(t, svc.Verify(ctx, userID, code, true))

		select {
		case msg := <-sent:
			assert.Equal(t, "user@example.com", msg.To)
			assert.Equal(t, "twofa-enabled", msg.Tag)
		case <-time.After(2 * time.Second):
			t.Fatal("notification email was not sent")
		}
	})
}

type chanMailer chan email.Message

func (m chanMailer) Send(_ context.Context, msg email.Message) error {
	m <- msg
	return nil
}

func TestVerifySession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// enableUser activates two-factor and returns the plain secret.
	enableUser := func(t *testing.T, storage *fakeStorage) (uuid.UUID, string) {
		t.Helper()

		secret, err := totp.GenerateSecret()
		require.NoError(t, err)
		encrypted, err := totp.EncryptSecret(secret, testEncKey)
		require.NoError(t, err)
		userID := storage.addUser("user@example.com", true, &encrypted)
		return userID, secret
	}

	t.Run("correct code verifies", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, secret := enableUser(t, storage)

		code, err := totp.CodeAt(secret, clock.Now())
		require.NoError(t, err)
		assert.NoError(t, svc.Verify(ctx, userID, code, false))
	})

	t.Run("codes from adjacent steps pass, farther drift fails", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		clock := newTestClock()
		svc := newTestService(t, storage, clock)
		userID, secret := enableUser(t, storage)

		for _, tc := range []struct {
			name  string
			drift time.Duration
			ok    bool
		}{
			{"previous step", -30 * time.Second, true},
			{"next step", 30 * time.Second, true},
			{"two steps behind", -60 * time.Second, false},
			{"two steps ahead", 60 * time.Second, false},
		} {
			code, err := totp.CodeAt(secret, clock.Now().Add(tc.drift))
			require.NoError(t, err)

			err = svc.Verify(ctx, userID, code, false)
			if tc.ok {
				assert.NoError(t, err, tc.name)
			} else {
				assert.ErrorIs(t, err, twofa.ErrInvalidCode, tc.name)
			}
		}
	})

	t.Run("not enabled", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newTestService(t, storage, newTestClock())
		userID := storage.addUser("user@example.com", false, nil)

		assert.ErrorIs(t, svc.Verify(ctx, userID, "123456", false), twofa.ErrNotEnabled)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t, newFakeStorage(), newTestClock())
		assert.ErrorIs(t, svc.Verify(ctx, uuid.New(), "123456", false), auth.ErrUserNotFound)
	})
}
