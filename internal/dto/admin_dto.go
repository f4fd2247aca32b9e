package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives the page count from the totals.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: 1}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
		if meta.TotalPages == 0 {
			meta.TotalPages = 1
		}
	}
	return meta
}

// ActivityLogResponse serializes one audit entry for the log viewer.
type ActivityLogResponse struct {
	ID             string                `json:"id"`
	CreatedAt      time.Time             `json:"created_at"`
	ActorID        string                `json:"actor_id"`
	ActorEmail     string                `json:"actor_email"`
	Action         models.ActivityAction `json:"action"`
	TargetTable    string                `json:"target_table"`
	TargetRecordID *string               `json:"target_record_id"`
	OldPayload     models.Document       `json:"old_payload"`
	NewPayload     models.Document       `json:"new_payload"`
	Description    string                `json:"description"`
}

// NewActivityLogResponse converts a log row into its API shape.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:             entry.ID,
		CreatedAt:      entry.CreatedAt,
		ActorID:        entry.ActorID,
		ActorEmail:     entry.ActorEmail,
		Action:         entry.Action,
		TargetTable:    entry.TargetTable,
		TargetRecordID: entry.TargetRecordID,
		OldPayload:     entry.OldPayload,
		NewPayload:     entry.NewPayload,
		Description:    entry.Description,
	}
}

// ActivityListRequest captures the log viewer query. Action and table filter the fetched page.
type ActivityListRequest struct {
	Limit  int    `query:"limit" validate:"omitempty,min=1"`
	Action string `query:"action" validate:"omitempty,oneof=CREATE UPDATE DELETE LOGIN LOGOUT create update delete login logout"`
	Table  string `query:"table" validate:"omitempty,max=64"`
}

// ActivityListResponse wraps the newest-first page of log entries.
type ActivityListResponse struct {
	Items   []ActivityLogResponse `json:"items"`
	Limit   int                   `json:"limit"`
	Fetched int                   `json:"fetched"`
}

// ActivityCreateRequest is a manual log entry submitted by the admin panel. Actor fields are
// never read from the request.
type ActivityCreateRequest struct {
	Action         string          `json:"action" validate:"required,oneof=CREATE UPDATE DELETE LOGIN LOGOUT create update delete login logout"`
	TargetTable    string          `json:"target_table" validate:"required,max=64"`
	TargetRecordID string          `json:"target_record_id" validate:"omitempty,max=64"`
	OldPayload     json.RawMessage `json:"old_payload"`
	NewPayload     json.RawMessage `json:"new_payload"`
	Description    string          `json:"description" validate:"required,max=2000"`
}

// DailyCountPoint is one bucket of the daily activity series.
type DailyCountPoint struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ActivityStatsResponse powers the statistics screen.
type ActivityStatsResponse struct {
	Days        int                           `json:"days"`
	Since       time.Time                     `json:"since"`
	Total       int                           `json:"total"`
	Daily       []DailyCountPoint             `json:"daily"`
	Actions     map[models.ActivityAction]int `json:"actions"`
	Tables      map[string]int                `json:"tables"`
	GeneratedAt time.Time                     `json:"generated_at"`
	CacheHit    bool                          `json:"cache_hit"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SessionResponse describes the active admin session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSessionResponse flattens a verified session.
func NewSessionResponse(session identity.Session) SessionResponse {
	return SessionResponse{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Email:     session.User.Email,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

// LoginResponse returns the bearer token with its session.
type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// MediaObjectMetadata mirrors the object store metadata block.
type MediaObjectMetadata struct {
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

// MediaObjectResponse is one entry of a bucket listing.
type MediaObjectResponse struct {
	Name      string              `json:"name"`
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	URL       string              `json:"url"`
	Metadata  MediaObjectMetadata `json:"metadata"`
}

// MediaUploadResponse describes a stored upload.
type MediaUploadResponse struct {
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	MimeType  string `json:"mimetype"`
	SizeBytes int64  `json:"size_bytes"`
}

// MediaRemoveRequest lists object paths to delete from a bucket.
type MediaRemoveRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}
