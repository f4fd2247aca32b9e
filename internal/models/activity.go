package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrActivityLogImmutable is returned when something tries to change a written log row.
var ErrActivityLogImmutable = errors.New("activity log entries are immutable")

// ActivityAction enumerates the kinds of admin activity that are logged.
type ActivityAction string

const (
	ActivityCreate ActivityAction = "CREATE"
	ActivityUpdate ActivityAction = "UPDATE"
	ActivityDelete ActivityAction = "DELETE"
	ActivityLogin  ActivityAction = "LOGIN"
	ActivityLogout ActivityAction = "LOGOUT"
)

// ActivityActions lists every known action in display order.
var ActivityActions = []ActivityAction{ActivityCreate, ActivityUpdate, ActivityDelete, ActivityLogin, ActivityLogout}

// ParseActivityAction normalises raw input into a known action.
func ParseActivityAction(raw string) (ActivityAction, bool) {
	action := ActivityAction(strings.ToUpper(strings.TrimSpace(raw)))
	return action, action.Valid()
}

// Valid reports whether the action belongs to the closed enumeration.
func (a ActivityAction) Valid() bool {
	switch a {
	case ActivityCreate, ActivityUpdate, ActivityDelete, ActivityLogin, ActivityLogout:
		return true
	default:
		return false
	}
}

// IsSession reports whether the action describes a session event rather than a data mutation.
func (a ActivityAction) IsSession() bool {
	return a == ActivityLogin || a == ActivityLogout
}

// AuthTable is the pseudo table used for session events.
const AuthTable = "auth"

// ActivityLog captures one admin action together with before/after snapshots.
type ActivityLog struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	ActorID        string         `gorm:"size:64;not null;index" json:"actor_id"`
	ActorEmail     string         `gorm:"size:255;not null" json:"actor_email"`
	Action         ActivityAction `gorm:"size:16;not null;index" json:"action"`
	TargetTable    string         `gorm:"size:64;not null;index" json:"target_table"`
	TargetRecordID *string        `gorm:"size:64" json:"target_record_id"`
	OldPayload     Document       `json:"old_payload"`
	NewPayload     Document       `json:"new_payload"`
	Description    string         `gorm:"type:text;not null" json:"description"`
}

// TableName pins the table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// BeforeCreate assigns the identifier at write time.
func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// BeforeUpdate rejects every update.
func (l *ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// BeforeDelete rejects every delete.
func (l *ActivityLog) BeforeDelete(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// ActivityStat is the payload-free projection used by statistics.
type ActivityStat struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Action      ActivityAction `json:"action"`
	TargetTable string         `json:"target_table"`
}
