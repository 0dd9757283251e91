package gatekeeper_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"invitation-bot/internal/gatekeeper"
	"invitation-bot/internal/models"
	"invitation-bot/internal/session"
	"invitation-bot/internal/store"
)

func newTestGatekeeper(t *testing.T) (*gatekeeper.Gatekeeper, *store.Store, *gorm.DB, *session.MemoryStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Invitation{}))

	st := store.New(db)
	sessions := session.NewMemoryStore()
	return gatekeeper.New(st, sessions), st, db, sessions
}

func TestStartGreetsAndBlocksNewUser(t *testing.T) {
	gk, _, _, sessions := newTestGatekeeper(t)

	reply := gk.HandleStart(100, "Alice")
	require.Equal(t, "Hi Alice! Can you give us an invitation code?", reply.Text)
	require.True(t, reply.HTML)
	require.True(t, reply.ForceReply)

	st, ok, err := sessions.Get(100)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, st.Blocked)
	require.Equal(t, 0, st.Attempts)
}

func TestStartUnblocksRegisteredUser(t *testing.T) {
	gk, st, _, _ := newTestGatekeeper(t)

	require.NoError(t, st.InsertUser(&models.User{
		ID:                     100,
		Name:                   "Alice",
		Role:                   models.RoleRegular,
		Type:                   models.TypeRegularUser,
		RegistrationDate:       store.NowStamp(),
		RegistrationInvitation: "ab3de789",
	}))

	gk.HandleStart(100, "Alice")

	reply := gk.HandleText(100, "Alice", "hello there")
	require.Equal(t, "hello there", reply.Text)
}

func TestHelp(t *testing.T) {
	gk, _, _, _ := newTestGatekeeper(t)
	require.Equal(t, "Help!", gk.HandleHelp().Text)
}

func TestTextWithoutSession(t *testing.T) {
	gk, _, _, sessions := newTestGatekeeper(t)

	reply := gk.HandleText(100, "Alice", "anything")
	require.Equal(t, "Welcome! use /start to run the bot", reply.Text)

	_, ok, err := sessions.Get(100)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWrongCodeAttemptsAndLockout(t *testing.T) {
	gk, _, db, sessions := newTestGatekeeper(t)

	require.NoError(t, db.Create(&models.Invitation{Code: "ab3de789"}).Error)

	gk.HandleStart(100, "Alice")

	// Three wrong codes each get a retry.
	for i := 1; i <= 3; i++ {
		reply := gk.HandleText(100, "Alice", "wrongcode")
		require.Equal(t, "Wrong code!", reply.Text)

		st, ok, err := sessions.Get(100)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, st.Blocked)
		require.Equal(t, i, st.Attempts)
	}

	// The fourth message hits the lockout branch even with a valid code.
	reply := gk.HandleText(100, "Alice", "ab3de789")
	require.Equal(t, "Sorry. You are blocked. To restart use /start", reply.Text)

	st, _, err := sessions.Get(100)
	require.NoError(t, err)
	require.Equal(t, 4, st.Attempts)

	// The valid code was never redeemed.
	var inv models.Invitation
	require.NoError(t, db.First(&inv, "code = ?", "ab3de789").Error)
	require.False(t, inv.Used)
}

func TestStartResetsLockout(t *testing.T) {
	gk, _, db, _ := newTestGatekeeper(t)

	require.NoError(t, db.Create(&models.Invitation{Code: "ab3de789"}).Error)

	gk.HandleStart(100, "Alice")
	for i := 0; i < 4; i++ {
		gk.HandleText(100, "Alice", "wrongcode")
	}

	gk.HandleStart(100, "Alice")
	reply := gk.HandleText(100, "Alice", "ab3de789")
	require.Equal(t, "Congrats! You've unlocked the echo bot", reply.Text)
}

func TestRedemptionRegistersAndUnlocks(t *testing.T) {
	gk, st, db, sessions := newTestGatekeeper(t)

	require.NoError(t, db.Create(&models.Invitation{Code: "ab3de789"}).Error)

	reply := gk.HandleStart(100, "Alice")
	require.Contains(t, reply.Text, "invitation code")

	reply = gk.HandleText(100, "Alice", "ab3de789")
	require.Equal(t, "Congrats! You've unlocked the echo bot", reply.Text)

	user, err := st.GetUser(100)
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
	require.Equal(t, models.RoleRegular, user.Role)
	require.Equal(t, models.TypeRegularUser, user.Type)
	require.Equal(t, "ab3de789", user.RegistrationInvitation)

	state, _, err := sessions.Get(100)
	require.NoError(t, err)
	require.False(t, state.Blocked)
	require.Equal(t, 1, state.Attempts)

	reply = gk.HandleText(100, "Alice", "echo me")
	require.Equal(t, "echo me", reply.Text)
}

func TestFailedRedemptionConsumesAttempt(t *testing.T) {
	gk, _, _, sessions := newTestGatekeeper(t)

	gk.HandleStart(100, "Alice")
	gk.HandleText(100, "Alice", "wrongcode")

	state, _, err := sessions.Get(100)
	require.NoError(t, err)
	require.Equal(t, 1, state.Attempts)
	require.True(t, state.Blocked)
}

func TestDuplicateRegistrationAborts(t *testing.T) {
	gk, st, db, sessions := newTestGatekeeper(t)

	require.NoError(t, st.InsertUser(&models.User{
		ID:                     100,
		Name:                   "Alice",
		Role:                   models.RoleRegular,
		Type:                   models.TypeRegularUser,
		RegistrationDate:       store.NowStamp(),
		RegistrationInvitation: "ab3de789",
	}))
	require.NoError(t, db.Create(&models.Invitation{Code: "second01"}).Error)

	// A blocked session for an already registered user: the redemption
	// succeeds but the insert collides, so the operation aborts silently.
	require.NoError(t, sessions.Put(100, session.State{Blocked: true}))

	reply := gk.HandleText(100, "Alice", "second01")
	require.True(t, reply.Empty())

	state, _, err := sessions.Get(100)
	require.NoError(t, err)
	require.True(t, state.Blocked)

	var inv models.Invitation
	require.NoError(t, db.First(&inv, "code = ?", "second01").Error)
	require.True(t, inv.Used)
}
