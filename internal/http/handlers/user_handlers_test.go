package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/mocks"
)

func TestUserHandlers_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := mocks.NewMockAuthService()
	authSvc.GetUserProfileFunc = func(ctx context.Context, userID uint) (*domain.User, error) {
		return &domain.User{ID: userID, Email: "jane@example.com", Username: "jane"}, nil
	}
	handler := NewUserHandlers(authSvc, mocks.NewMockUserRepository())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	c.Set("user_id", "1")
	handler.Me(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := decodeBody(t, w); body["email"] != "jane@example.com" {
		t.Errorf("email = %v", body["email"])
	}
}

func TestUserHandlers_UpdateMePhoneChangeResetsVerification(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return &domain.User{ID: id, Email: "jane@example.com", Phone: "+911111111111", PhoneVerified: true}, nil
	}
	var saved *domain.User
	userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
		saved = user
		return nil
	}
	handler := NewUserHandlers(mocks.NewMockAuthService(), userRepo)

	w := httptest.NewRecorder()
	c := postJSON(t, w, "/users/me", map[string]string{"phone": "+922222222222"})
	c.Set("user_id", "1")
	handler.UpdateMe(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if saved == nil {
		t.Fatal("user not saved")
	}
	if saved.Phone != "+922222222222" {
		t.Errorf("phone = %q", saved.Phone)
	}
	if saved.PhoneVerified {
		t.Error("phone change must drop the verified flag")
	}
}

func TestUserHandlers_ListUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	userRepo.ListFunc = func(ctx context.Context, offset, limit int) ([]*domain.User, int64, error) {
		return []*domain.User{{ID: 1, Email: "a@example.com"}, {ID: 2, Email: "b@example.com"}}, 9, nil
	}
	handler := NewUserHandlers(mocks.NewMockAuthService(), userRepo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/users?offset=0&limit=2", nil)
	handler.ListUsers(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["total"] != float64(9) {
		t.Errorf("total = %v, want 9", body["total"])
	}
	if users := body["users"].([]interface{}); len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}

func TestUserHandlers_DeactivateRevokesSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return &domain.User{ID: id, IsActive: true}, nil
	}
	var setTo *bool
	userRepo.SetActiveFunc = func(ctx context.Context, userID uint, active bool) error {
		setTo = &active
		return nil
	}
	authSvc := mocks.NewMockAuthService()
	revoked := false
	authSvc.LogoutAllFunc = func(ctx context.Context, userID uint) (int64, error) {
		revoked = true
		return 2, nil
	}
	handler := NewUserHandlers(authSvc, userRepo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/users/7/deactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	handler.DeactivateUser(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if setTo == nil || *setTo {
		t.Error("account not deactivated")
	}
	if !revoked {
		t.Error("sessions not revoked on deactivation")
	}
}

func TestUserHandlers_GetUserNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewUserHandlers(mocks.NewMockAuthService(), mocks.NewMockUserRepository())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/users/99", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	handler.GetUser(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
