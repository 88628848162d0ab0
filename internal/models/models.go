package models

// User is the persisted account record. PasswordHash is opaque, produced only
// by pkg/hash, and never serialized or logged. Records are never deleted.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	FullName     string `json:"full_name"`
	Role         string `gorm:"not null"                 json:"role"`
	Disabled     bool   `gorm:"default:false"            json:"disabled"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}
