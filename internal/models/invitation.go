package models

type Invitation struct {
	ID             uint   `gorm:"primaryKey"`
	Code           string `gorm:"size:8;uniqueIndex;not null"`
	InvitingUserID *int64 `gorm:"index"`
	Used           bool   `gorm:"not null;default:false"`
}
