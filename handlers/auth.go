package handlers

import (
	"errors"
	"net/http"

	"socialapi/database"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"Valid email is required!"`
	Password string `json:"password" binding:"required" msg:"Password is required!"`
}

// Login handles POST /api/auth. Unknown email and wrong password produce the
// same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, database.ErrNotFound) {
		// keep unknown emails as slow as wrong passwords
		_ = bcrypt.CompareHashAndPassword(h.dummyPasswordHash(), []byte(req.Password))
		validationFailed(c, FieldError{Msg: "Invalid credentials!"})
		return
	}
	if err != nil {
		h.serverError(c, "Login", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		validationFailed(c, FieldError{Msg: "Invalid credentials!"})
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) dummyPasswordHash() []byte {
	h.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.bcryptCost)
		if err != nil {
			h.log.WithError(err).Error("failed to build dummy password hash")
			return
		}
		h.dummyHash = hash
	})
	return h.dummyHash
}

// Me handles GET /api/auth.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, "User not found")
		return
	}
	if err != nil {
		h.serverError(c, "Me", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
