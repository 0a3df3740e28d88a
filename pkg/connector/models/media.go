package models

import "time"

// Media is the CMS entity whose underlying file is edited through the
// document service.
type Media struct {
	Id        string      `gorm:"column:id;primaryKey" json:"id"`
	Uuid      string      `gorm:"column:uuid;uniqueIndex" json:"uuid"`
	Name      string      `json:"name"`
	Bundle    string      `json:"bundle"`
	OwnerID   string      `gorm:"column:owner_id" json:"ownerId"`
	File      *StoredFile `gorm:"foreignKey:FileID" json:"file,omitempty"`
	FileID    *string     `gorm:"column:file_id" json:"fileId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// StoredFile is one physical artifact on the storage backend. A new record
// is created for every successful save; old records stay behind as part of
// the revision history.
type StoredFile struct {
	Id        string    `gorm:"column:id;primaryKey" json:"id"`
	Uuid      string    `gorm:"column:uuid;uniqueIndex" json:"uuid"`
	Filename  string    `json:"filename"`
	Uri       string    `json:"uri"`
	MimeType  string    `gorm:"column:mime_type" json:"mimeType"`
	Size      int64     `json:"size"`
	OwnerID   string    `gorm:"column:owner_id" json:"ownerId"`
	Permanent bool      `json:"permanent"`
	ChangedAt time.Time `gorm:"column:changed_at" json:"changedAt"`
}

// MediaRevision records one save of a media entity: which file became
// current, who saved it and when.
type MediaRevision struct {
	Id         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MediaID    string    `gorm:"column:media_id;index" json:"mediaId"`
	FileID     string    `gorm:"column:file_id" json:"fileId"`
	UserID     string    `gorm:"column:user_id" json:"userId"`
	LogMessage string    `gorm:"column:log_message" json:"logMessage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AnonymousUserID is the sentinel owner for unauthenticated actors.
const AnonymousUserID = "0"

// User is an acting identity resolved from a callback or a signed link.
// It is established per request and passed explicitly through the call
// chain, never stored globally.
type User struct {
	Id   string `gorm:"column:id;primaryKey" json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.Id == "" || u.Id == AnonymousUserID
}

// Anonymous returns the sentinel identity used when a callback carries no
// resolvable user id.
func Anonymous() *User {
	return &User{Id: AnonymousUserID, Name: "Anonymous"}
}

// Submission links a filled form result to the media it was submitted
// against. Uid is AnonymousUserID for unauthenticated submitters.
type Submission struct {
	Id        string    `gorm:"column:id;primaryKey" json:"id"`
	MediaID   string    `gorm:"column:media_id;index" json:"mediaId"`
	FileID    string    `gorm:"column:file_id" json:"fileId"`
	Uid       string    `gorm:"column:uid" json:"uid"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmissionMarker is the cross-session "already submitted" flag kept for
// anonymous submitters, keyed by media id. Purged after ExpiresAt.
type SubmissionMarker struct {
	MediaID   string    `gorm:"column:media_id;primaryKey" json:"mediaId"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expiresAt"`
}
