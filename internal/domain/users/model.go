package users

import "time"

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name         string  `json:"name" bson:"name"`
	Handle       string  `gorm:"not null;uniqueIndex:idx_users_handle" json:"handle" bson:"handle"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email" bson:"email"`
	Phone        string  `json:"phone" bson:"phone"`
	Password     *string `json:"-" bson:"password,omitempty"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider" bson:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-" bson:"google_sub,omitempty"`
	Role         string  `gorm:"not null;default:'user'" json:"role" bson:"role"`
	Plan         string  `gorm:"not null;default:'free'" json:"plan" bson:"plan"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) RecordID() string      { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}
