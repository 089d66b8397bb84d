package volunteers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/utils"
)

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var volunteer Volunteer

	err := json.NewDecoder(r.Body).Decode(&volunteer)
	if err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	// Check if request has username & password
	if volunteer.Username == "" || volunteer.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	// Check if username is taken
	var existing Volunteer
	err = db.DB.First(&existing, "username = ?", volunteer.Username).Error
	if err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(volunteer.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	volunteer.HashedPassword = string(hashed)
	volunteer.VolunteerID = utils.GenerateUUID()

	// Admins are promoted by hand, never through the public form
	volunteer.Role = "volunteer"

	// Clear volunteer password
	volunteer.Password = ""

	// Save to DB
	if err := db.DB.Create(&volunteer).Error; err != nil {
		http.Error(w, "Failed to register volunteer", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"volunteer_id": volunteer.VolunteerID,
		"username":     volunteer.Username,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var volunteer Volunteer
	var session Session
	var existing Session

	err := json.NewDecoder(r.Body).Decode(&volunteer)
	if err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	// Search for matching username. Password has no column, so the
	// decoded plaintext survives the lookup for the compare below.
	err = db.DB.First(&volunteer, "username = ?", volunteer.Username).Error
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	// Compare hashed password with plaintext password
	err = bcrypt.CompareHashAndPassword([]byte(volunteer.HashedPassword), []byte(volunteer.Password))
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	// Passwords matched, set cookie
	id := utils.GenerateUUID()
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})

	// One session per volunteer: replace any existing session row
	db.DB.Where("volunteer_id = ?", volunteer.VolunteerID).First(&existing)
	if existing.VolunteerID != "" {
		db.DB.Delete(&existing)
	}
	session.SessionID = id
	session.VolunteerID = volunteer.VolunteerID
	session.ExpiresAt = time.Now().Add(12 * time.Hour)
	db.DB.Create(&session)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Login successful")
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var session Session

	// Get session_id from cookie
	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	// search sessions for session_id
	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		http.Error(w, "Couldn't find session", http.StatusUnauthorized)
		return
	}

	db.DB.Delete(&session)

	// Replace the cookie with new expired/empty cookie
	deletedCookie := &http.Cookie{
		Name:   "session_id",
		Value:  "",
		MaxAge: 0,
		Path:   "/",
	}
	http.SetCookie(w, deletedCookie)

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

type MeResponse struct {
	VolunteerID  string `json:"volunteer_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	var volunteer Volunteer

	volunteerID, ok := utils.GetVolunteerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Failed converting ID to string", http.StatusInternalServerError)
		return
	}

	err := db.DB.First(&volunteer, "volunteer_id = ?", volunteerID).Error
	if err != nil {
		http.Error(w, "Couldn't find volunteer", http.StatusNotFound)
		return
	}

	response := MeResponse{
		VolunteerID:  volunteerID,
		Username:     volunteer.Username,
		Role:         volunteer.Role,
		Organization: volunteer.Organization,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	// Middleware checks volunteer is logged in (valid session).
	// Verify the current password against the stored hash, then swap in
	// the new hash.

	type UpdatePassword struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var volunteer Volunteer
	var updatepass UpdatePassword
	var session Session

	// Get session cookie
	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	// Search db for matching session_id
	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		http.Error(w, "Couldn't find session", http.StatusUnauthorized)
		return
	}

	err = db.DB.First(&volunteer, "volunteer_id = ?", session.VolunteerID).Error
	if err != nil {
		http.Error(w, "Couldn't find volunteer", http.StatusUnauthorized)
		return
	}

	err = json.NewDecoder(r.Body).Decode(&updatepass)
	if err != nil {
		http.Error(w, "Current and new password are required", http.StatusBadRequest)
		return
	}

	// Make sure current password matches stored hash before updating
	err = bcrypt.CompareHashAndPassword([]byte(volunteer.HashedPassword), []byte(updatepass.CurrentPassword))
	if err != nil {
		http.Error(w, "Invalid current password", http.StatusUnauthorized)
		return
	}

	// Hash new password
	hashed, err := bcrypt.GenerateFromPassword([]byte(updatepass.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	// Update stored hashed_password
	db.DB.Model(&volunteer).Update("hashed_password", string(hashed))

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Password updated")
}
