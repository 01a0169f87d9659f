package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// UserHandlers serves the profile and admin user-management endpoints.
type UserHandlers struct {
	authSvc  domain.AuthService
	userRepo domain.UserRepository
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(authSvc domain.AuthService, userRepo domain.UserRepository) *UserHandlers {
	return &UserHandlers{authSvc: authSvc, userRepo: userRepo}
}

// UpdateProfileRequest carries the fields a user may change on their own
// profile. A phone change drops the verified flag.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Me returns the authenticated user's profile.
func (h *UserHandlers) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized", "status_code": http.StatusUnauthorized})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userProfile(user))
}

// UpdateMe updates the authenticated user's profile.
func (h *UserHandlers) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized", "status_code": http.StatusUnauthorized})
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		user.Phone = *req.Phone
		user.PhoneVerified = false
	}

	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userProfile(user))
}

// GetUser returns a user by ID. Access is enforced by the authorization
// middleware: owners and admins only.
func (h *UserHandlers) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id", "status_code": http.StatusBadRequest})
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userProfile(user))
}

// ListUsers returns a page of users, newest first.
func (h *UserHandlers) ListUsers(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := h.userRepo.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, userProfile(user))
	}
	c.JSON(http.StatusOK, gin.H{
		"users":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// ActivateUser reactivates a deactivated account.
func (h *UserHandlers) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateUser deactivates an account and revokes all of its sessions.
func (h *UserHandlers) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandlers) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id", "status_code": http.StatusBadRequest})
		return
	}
	userID := uint(id)

	if _, err := h.userRepo.FindByID(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.userRepo.SetActive(c.Request.Context(), userID, active); err != nil {
		respondError(c, err)
		return
	}

	if !active {
		if _, err := h.authSvc.LogoutAll(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deactivated and sessions revoked", "user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User activated", "user_id": userID})
}
