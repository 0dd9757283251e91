// Package gatekeeper decides, per incoming message, what to reply and
// how session and durable state change. It knows nothing about
// Telegram; internal/bot only transports its replies.
package gatekeeper

import (
	"errors"
	"fmt"
	"log"

	"invitation-bot/internal/models"
	"invitation-bot/internal/session"
	"invitation-bot/internal/store"
)

// Reply is what a handler should send back. A zero Reply means send
// nothing (a storage failure was logged and the operation abandoned).
type Reply struct {
	Text       string
	HTML       bool
	ForceReply bool
}

func (r Reply) Empty() bool { return r.Text == "" }

// maxAttempts is compared BEFORE the counter increments, so the third
// wrong code still gets "Wrong code!" and the fourth message onward
// gets the blocked reply regardless of content.
const maxAttempts = 2

const (
	msgHelp      = "Help!"
	msgNoSession = "Welcome! use /start to run the bot"
	msgBlocked   = "Sorry. You are blocked. To restart use /start"
	msgWrongCode = "Wrong code!"
	msgUnlocked  = "Congrats! You've unlocked the echo bot"
)

type Gatekeeper struct {
	store    *store.Store
	sessions session.Store
}

func New(st *store.Store, sessions session.Store) *Gatekeeper {
	return &Gatekeeper{store: st, sessions: sessions}
}

// HandleStart resets the sender's session. Users already in the USERS
// table start unblocked; everyone else must produce an invitation code.
// /start is also how a locked-out user gets their attempts back to
// zero.
func (g *Gatekeeper) HandleStart(userID int64, mention string) Reply {
	exists, err := g.store.UserExists(userID)
	if err != nil {
		log.Printf("Failed to look up user %d: %v", userID, err)
		return Reply{}
	}

	if err := g.sessions.Put(userID, session.State{Attempts: 0, Blocked: !exists}); err != nil {
		log.Printf("Failed to store session for %d: %v", userID, err)
		return Reply{}
	}

	return Reply{
		Text:       fmt.Sprintf("Hi %s! Can you give us an invitation code?", mention),
		HTML:       true,
		ForceReply: true,
	}
}

// HandleHelp replies with the static help text. No state changes.
func (g *Gatekeeper) HandleHelp() Reply {
	return Reply{Text: msgHelp}
}

// HandleText is the gate itself: echo for unlocked users, invitation
// redemption for blocked ones.
func (g *Gatekeeper) HandleText(userID int64, firstName, text string) Reply {
	st, ok, err := g.sessions.Get(userID)
	if err != nil {
		log.Printf("Failed to load session for %d: %v", userID, err)
		return Reply{}
	}
	if !ok {
		// No session this process run. Durable registration is not
		// consulted here; /start rebuilds the session from the table.
		return Reply{Text: msgNoSession}
	}

	if !st.Blocked {
		return Reply{Text: text}
	}

	if st.Attempts > maxAttempts {
		st.Attempts++
		if err := g.sessions.Put(userID, st); err != nil {
			log.Printf("Failed to store session for %d: %v", userID, err)
		}
		return Reply{Text: msgBlocked}
	}

	// The attempt is consumed before redemption, so a failed attempt
	// still counts.
	st.Attempts++
	if err := g.sessions.Put(userID, st); err != nil {
		log.Printf("Failed to store session for %d: %v", userID, err)
		return Reply{}
	}

	if err := g.store.RedeemInvitation(text); err != nil {
		if errors.Is(err, store.ErrInvitationInvalid) {
			return Reply{Text: msgWrongCode}
		}
		log.Printf("Failed to redeem invitation for %d: %v", userID, err)
		return Reply{}
	}

	user := &models.User{
		ID:                     userID,
		Name:                   firstName,
		Role:                   models.RoleRegular,
		Type:                   models.TypeRegularUser,
		RegistrationDate:       store.NowStamp(),
		RegistrationInvitation: text,
	}
	if err := g.store.InsertUser(user); err != nil {
		log.Printf("Failed to register user %d: %v", userID, err)
		return Reply{}
	}

	st.Blocked = false
	if err := g.sessions.Put(userID, st); err != nil {
		log.Printf("Failed to store session for %d: %v", userID, err)
	}
	return Reply{Text: msgUnlocked}
}
