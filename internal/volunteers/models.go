package volunteers

import "time"

type Session struct {
	SessionID   string    `gorm:"primaryKey" json:"-"`
	VolunteerID string    `gorm:"not null;unique" json:"-"`
	ExpiresAt   time.Time `gorm:"not null"`
}

type Volunteer struct {
	VolunteerID    string  `gorm:"primaryKey" json:"volunteer_id"`
	Username       string  `json:"username"`
	Password       string  `json:"password" gorm:"-"`
	HashedPassword string  `json:"-"`
	Role           string  `gorm:"default:'volunteer'" json:"role"`
	Organization   string  `json:"organization"`
	ContactPhone   string  `json:"contact_phone"`
	Session        Session `gorm:"foreignKey:VolunteerID" json:"session"`
}

func (Session) TableName() string   { return "app_auth.sessions" }
func (Volunteer) TableName() string { return "app_auth.volunteers" }
