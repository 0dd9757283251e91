package models

// Role values stored in the ROL column.
const (
	RoleSuperAdmin = 0
	RoleAdmin      = 1
	RoleRegular    = 2
)

// User type tags. Different kinds of users (customers, assistants,
// inviters) can be told apart by Type without adding roles.
const (
	TypeSuperAdmin  = "super_admin"
	TypeRegularUser = "regular_user"
)

// Conversation status values. StatusCancelling is reserved for a /cancel
// flow and is never set by the current handlers.
const (
	StatusNormal     = 0
	StatusCancelling = 1
)

type User struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement:false"` // Telegram ID
	Name                   string `gorm:"not null"`
	Role                   int    `gorm:"not null"`
	Type                   string `gorm:"not null"`
	RegistrationDate       int64  `gorm:"not null"` // compact YYYYMMDDHHMMSS
	RegistrationInvitation string `gorm:"not null"`
	ConversationStatus     int    `gorm:"not null;default:0"`
}
