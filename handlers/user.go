package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"socialapi/database"
	"socialapi/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name       string `json:"name" binding:"required" msg:"Name is required!"`
	SecondName string `json:"secondName" binding:"required" msg:"Second name is required!"`
	Email      string `json:"email" binding:"required,email" msg:"Valid email is required!"`
	Password   string `json:"password" binding:"min=6" msg:"Please enter a password with 6 or more characters"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// gravatarURL returns a 200px, pg rated avatar with the mystery-man fallback.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

// Register handles POST /api/users.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	email := normalizeEmail(req.Email)

	_, err := h.users.FindByEmail(ctx, email)
	if err == nil {
		validationFailed(c, FieldError{Msg: "User already exists"})
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.serverError(c, "Register", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.serverError(c, "Register", err)
		return
	}

	user := &models.User{
		Name:       strings.TrimSpace(req.Name),
		SecondName: strings.TrimSpace(req.SecondName),
		Email:      email,
		Password:   string(hash),
		Avatar:     gravatarURL(email),
		Date:       time.Now(),
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			validationFailed(c, FieldError{Msg: "User already exists"})
			return
		}
		h.serverError(c, "Register", err)
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User) {
	signed, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		h.serverError(c, "Token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed})
}
