package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/mocks"
)

func accessClaims() *domain.TokenClaims {
	return &domain.TokenClaims{
		UserID:    1,
		Role:      domain.RoleCustomer,
		SessionID: "s1",
		TokenType: "access",
	}
}

func runAuthMiddleware(t *testing.T, tokenSvc *mocks.MockTokenService, sessionRepo *mocks.MockSessionRepository, prepare func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reached := false
	router := gin.New()
	router.GET("/protected", AuthMiddleware(tokenSvc, sessionRepo), func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("user_id"),
			"user_role":  c.GetString("user_role"),
			"session_id": c.GetString("session_id"),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, reached
}

func TestAuthMiddleware_Success(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return accessClaims(), nil
	}
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: 1}, nil
	}

	w, reached := runAuthMiddleware(t, tokenSvc, sessionRepo, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer good-token")
	})

	if !reached {
		t.Fatalf("handler not reached, status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["user_id"] != "1" || body["session_id"] != "s1" || body["user_role"] != domain.RoleCustomer {
		t.Errorf("context values = %v", body)
	}
}

func TestAuthMiddleware_AccessCookieFallback(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		if token != "cookie-token" {
			return nil, domain.ErrTokenInvalid
		}
		return accessClaims(), nil
	}
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: 1}, nil
	}

	_, reached := runAuthMiddleware(t, tokenSvc, sessionRepo, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	})
	if !reached {
		t.Error("handler not reached with access cookie")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		tokenErr    error
		sessionErr  error
		sessionUser uint
		header      string
		wantStatus  int
		wantDetail  string
	}{
		{
			name:       "no credentials",
			header:     "",
			wantStatus: http.StatusUnauthorized,
			wantDetail: "authentication required",
		},
		{
			name:       "expired token",
			header:     "Bearer expired",
			tokenErr:   domain.ErrTokenExpired,
			wantStatus: http.StatusUnauthorized,
			wantDetail: "token expired",
		},
		{
			name:       "malformed token",
			header:     "Bearer garbage",
			tokenErr:   domain.ErrTokenMalformed,
			wantStatus: http.StatusUnauthorized,
			wantDetail: "malformed token",
		},
		{
			name:       "revoked session",
			header:     "Bearer good-token",
			sessionErr: domain.ErrSessionNotFound,
			wantStatus: http.StatusUnauthorized,
			wantDetail: "session expired",
		},
		{
			name:       "cache unreachable fails closed",
			header:     "Bearer good-token",
			sessionErr: domain.ErrDependencyUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "service temporarily unavailable",
		},
		{
			name:        "session user mismatch",
			header:      "Bearer good-token",
			sessionUser: 99,
			wantStatus:  http.StatusUnauthorized,
			wantDetail:  "session user mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenSvc := mocks.NewMockTokenService()
			tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
				if tt.tokenErr != nil {
					return nil, tt.tokenErr
				}
				return accessClaims(), nil
			}
			sessionRepo := mocks.NewMockSessionRepository()
			sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
				if tt.sessionErr != nil {
					return nil, tt.sessionErr
				}
				userID := uint(1)
				if tt.sessionUser != 0 {
					userID = tt.sessionUser
				}
				return &domain.Session{ID: sessionID, UserID: userID}, nil
			}

			w, reached := runAuthMiddleware(t, tokenSvc, sessionRepo, func(req *http.Request) {
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
			})

			if reached {
				t.Fatal("handler reached, want rejection")
			}
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if body["detail"] != tt.wantDetail {
				t.Errorf("detail = %v, want %q", body["detail"], tt.wantDetail)
			}
		})
	}
}
