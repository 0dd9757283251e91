package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"invitation-bot/internal/models"
)

var (
	// ErrStorageUnavailable wraps failures to open or create the
	// database file. Fatal at startup, unrecoverable elsewhere.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUserExists reports a primary-key collision on user insert.
	ErrUserExists = errors.New("user already exists")
	// ErrAlreadyProvisioned reports that the super admin is already
	// seeded; the call performed no write.
	ErrAlreadyProvisioned = errors.New("super admin already provisioned")
	// ErrInviterNotFound reports that the user invitations were being
	// assigned to does not exist.
	ErrInviterNotFound = errors.New("inviting user does not exist")
	// ErrInvitationInvalid reports an unknown, malformed or already
	// used invitation code. Expected control flow, not logged.
	ErrInvitationInvalid = errors.New("invitation invalid")
)

// superAdminInvitation is the sentinel stored as the super admin's
// registration invitation, since no real code is ever redeemed for it.
const superAdminInvitation = "0000"

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 8
	codeRetries  = 5
)

// Store is the persistence gateway for users and invitations. All
// queries go through gorm with bound parameters.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertUser inserts a new user row. The row is committed immediately.
func (s *Store) InsertUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: id %d", ErrUserExists, user.ID)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given Telegram ID.
func (s *Store) GetUser(id int64) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// UserExists reports whether a user row with this Telegram ID exists.
func (s *Store) UserExists(id int64) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// ProvisionSuperAdmin seeds the first user so everything else can work.
// It is idempotent: if a user with this ID already exists it returns
// ErrAlreadyProvisioned and writes nothing.
func (s *Store) ProvisionSuperAdmin(id int64) error {
	exists, err := s.UserExists(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyProvisioned
	}

	return s.InsertUser(&models.User{
		ID:                     id,
		Name:                   models.TypeSuperAdmin,
		Role:                   models.RoleSuperAdmin,
		Type:                   models.TypeSuperAdmin,
		RegistrationDate:       NowStamp(),
		RegistrationInvitation: superAdminInvitation,
	})
}

// GenerateInvitations creates count random single-use codes, optionally
// assigned to an inviting user. Each row is committed individually, so
// on error the codes already created stay in place; the returned slice
// holds exactly the codes that made it in.
func (s *Store) GenerateInvitations(count int, invitingUserID *int64) ([]string, error) {
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if invitingUserID != nil {
			exists, err := s.UserExists(*invitingUserID)
			if err != nil {
				return codes, err
			}
			if !exists {
				log.Printf("Cannot assign invitations. User %d does not exist", *invitingUserID)
				return codes, fmt.Errorf("%w: %d", ErrInviterNotFound, *invitingUserID)
			}
		}

		code, err := s.insertInvitation(invitingUserID)
		if err != nil {
			return codes, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// insertInvitation inserts one new unused invitation, regenerating the
// code on a unique-index collision.
func (s *Store) insertInvitation(invitingUserID *int64) (string, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		inv := models.Invitation{Code: code, InvitingUserID: invitingUserID}
		err = s.db.Create(&inv).Error
		if err == nil {
			return code, nil
		}
		if !isDuplicate(err) {
			return "", fmt.Errorf("insert invitation: %w", err)
		}
	}
	return "", fmt.Errorf("no unique invitation code after %d tries", codeRetries)
}

// ListAvailableInvitations returns the unused codes assigned to a user,
// in insertion order. A user with no codes gets an empty slice.
func (s *Store) ListAvailableInvitations(userID int64) ([]string, error) {
	var codes []string
	err := s.db.Model(&models.Invitation{}).
		Where("inviting_user_id = ? AND used = ?", userID, false).
		Order("id").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("list invitations for %d: %w", userID, err)
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

// RedeemInvitation consumes an unused invitation. The check and the
// flag flip are a single conditional UPDATE, so two concurrent
// redemptions of the same code cannot both succeed.
func (s *Store) RedeemInvitation(code string) error {
	res := s.db.Model(&models.Invitation{}).
		Where("code = ? AND used = ?", code, false).
		Update("used", true)
	if res.Error != nil {
		return fmt.Errorf("redeem invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvitationInvalid
	}
	return nil
}

// NowStamp returns the current time in the compact YYYYMMDDHHMMSS
// encoding used by the REGISTRATION_DATE column.
func NowStamp() int64 {
	v, _ := strconv.ParseInt(time.Now().Format("20060102150405"), 10, 64)
	return v
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
