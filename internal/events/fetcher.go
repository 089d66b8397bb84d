package events

import (
	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/utils"
	"github.com/anas-fareedi/disaster-management/internal/volunteers"
)

type SessionInfo struct{}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var session volunteers.Session

	err := db.DB.First(&session, "session_id = ?", id).Error
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		VolunteerID: session.VolunteerID,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}
