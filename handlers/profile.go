package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"socialapi/database"
	"socialapi/models"

	"github.com/gin-gonic/gin"
)

const noProfile = "There is no profile for this user"

type profileRequest struct {
	Company  string            `json:"company"`
	Website  string            `json:"website"`
	Location string            `json:"location"`
	Status   string            `json:"status"`
	Bio      string            `json:"bio"`
	Skills   *models.SkillList `json:"skills"`

	YouTube   string `json:"youtube"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	VK        string `json:"vk"`
	TikTok    string `json:"tiktok"`
	Telegram  string `json:"telegram"`

	MobilePhone string `json:"mobilePhone"`
	Phone       string `json:"phone"`
	Fax         string `json:"fax"`
	Email       string `json:"email"`
	Viber       string `json:"viber"`
	Hangouts    string `json:"hangouts"`
	Skype       string `json:"skype"`
}

func (r *profileRequest) update() models.ProfileUpdate {
	u := models.ProfileUpdate{
		Company:  strings.TrimSpace(r.Company),
		Website:  strings.TrimSpace(r.Website),
		Location: strings.TrimSpace(r.Location),
		Status:   strings.TrimSpace(r.Status),
		Bio:      strings.TrimSpace(r.Bio),
		Social: models.Social{
			YouTube:   r.YouTube,
			Twitter:   r.Twitter,
			Facebook:  r.Facebook,
			LinkedIn:  r.LinkedIn,
			Instagram: r.Instagram,
			VK:        r.VK,
			TikTok:    r.TikTok,
			Telegram:  r.Telegram,
		},
		Contacts: models.Contacts{
			MobilePhone: r.MobilePhone,
			Phone:       r.Phone,
			Fax:         r.Fax,
			Email:       r.Email,
			Viber:       r.Viber,
			Hangouts:    r.Hangouts,
			Skype:       r.Skype,
		},
	}
	if r.Skills != nil && len(*r.Skills) > 0 {
		u.Skills = []models.Skill(*r.Skills)
	}
	return u
}

// GetMyProfile handles GET /api/profile/me.
func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, noProfile)
		return
	}
	if err != nil {
		h.serverError(c, "GetMyProfile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertProfile handles POST /api/profile. Skills are required when the
// profile is created; later calls only change the fields they carry.
func (h *Handler) UpsertProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	update := req.update()

	ctx, cancel := h.requestContext(c)
	defer cancel()

	_, err := h.profiles.FindByUser(ctx, userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if len(update.Skills) == 0 {
			validationFailed(c, bodyError("Skills are required", "skills"))
			return
		}
	case err != nil:
		h.serverError(c, "UpsertProfile", err)
		return
	}

	profile, err := h.profiles.Upsert(ctx, userID, update)
	if err != nil {
		h.serverError(c, "UpsertProfile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListProfiles handles GET /api/profile.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	profiles, err := h.profiles.List(ctx)
	if err != nil {
		h.serverError(c, "ListProfiles", err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id.
func (h *Handler) GetProfileByUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.profiles.FindByUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, "Profile not found")
		return
	}
	if err != nil {
		h.serverError(c, "GetProfileByUser", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteAccount handles DELETE /api/profile. Posts, media, the push
// subscription, the profile and the user go together; stored blobs are
// removed afterwards on a best-effort basis.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	media, err := h.accounts.Delete(ctx, userID)
	if err != nil {
		h.serverError(c, "DeleteAccount", err)
		return
	}

	if h.storage != nil {
		for _, m := range media {
			if err := h.storage.Delete(ctx, m.StorageKey); err != nil {
				h.log.WithError(err).WithField("key", m.StorageKey).Warn("failed to remove media blob")
			}
		}
	}

	h.broadcast("account_deleted", gin.H{"user": userID.Hex()})
	message(c, http.StatusOK, "User deleted")
}

type educationRequest struct {
	School       string `json:"school" binding:"required" msg:"School is required"`
	Degree       string `json:"degree" binding:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required" msg:"Field of study is required"`
	From         string `json:"from" binding:"required" msg:"From is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AddEducation handles PUT /api/profile/education.
func (h *Handler) AddEducation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req educationRequest
	if !bindJSON(c, &req) {
		return
	}

	from, ok := parseDate(req.From)
	if !ok {
		validationFailed(c, bodyError("From must be a valid date", "from"))
		return
	}

	edu := models.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		Current:      req.Current,
		Description:  req.Description,
	}
	if req.To != "" && !req.Current {
		to, ok := parseDate(req.To)
		if !ok {
			validationFailed(c, bodyError("To must be a valid date", "to"))
			return
		}
		edu.To = &to
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.profiles.AddEducation(ctx, userID, edu)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, noProfile)
		return
	}
	if err != nil {
		h.serverError(c, "AddEducation", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteEducation handles DELETE /api/profile/education/:edu_id.
func (h *Handler) DeleteEducation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eduID, ok := pathID(c, "edu_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	profile, err := h.profiles.RemoveEducation(ctx, userID, eduID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, noProfile)
		return
	}
	if err != nil {
		h.serverError(c, "DeleteEducation", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
