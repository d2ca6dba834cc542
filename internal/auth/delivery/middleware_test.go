package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "cubent-backend/internal/auth/domain"
	"cubent-backend/pkg/identity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthUsecase struct {
	authenticateFn func(sessionCookie, bearer string) (*identity.Identity, error)
}

func (s *stubAuthUsecase) Authenticate(_ context.Context, sessionCookie, bearer string) (*identity.Identity, error) {
	return s.authenticateFn(sessionCookie, bearer)
}

func (s *stubAuthUsecase) SyncUser(context.Context, *identity.Identity) (*authdomain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthUsecase) UserForIdentity(*identity.Identity) (*authdomain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthUsecase) AcceptTerms(string) error { return nil }

func (s *stubAuthUsecase) GenerateSessionToken(*authdomain.User) (string, error) {
	return "", errors.New("not implemented")
}

func verifyingStub() *stubAuthUsecase {
	return &stubAuthUsecase{
		authenticateFn: func(sessionCookie, bearer string) (*identity.Identity, error) {
			if bearer == "good-token" || sessionCookie == "good-cookie" {
				return &identity.Identity{ProviderID: "prov-1"}, nil
			}
			return nil, errors.New("invalid credentials")
		},
	}
}

func setupMiddlewareRouter(required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	mw := RequireSession(verifyingStub())
	if !required {
		mw = OptionalSession(verifyingStub())
	}

	router.GET("/protected", mw, func(c *gin.Context) {
		ident := IdentityFrom(c)
		if ident == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"provider_id": ident.ProviderID})
	})
	return router
}

func TestRequireSession_NoCredentials(t *testing.T) {
	router := setupMiddlewareRouter(true)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_BearerToken(t *testing.T) {
	router := setupMiddlewareRouter(true)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prov-1")
}

func TestRequireSession_SessionCookie(t *testing.T) {
	router := setupMiddlewareRouter(true)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: ProviderSessionCookie, Value: "good-cookie"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prov-1")
}

func TestRequireSession_BadToken(t *testing.T) {
	router := setupMiddlewareRouter(true)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_MalformedHeader(t *testing.T) {
	router := setupMiddlewareRouter(true)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalSession_AnonymousPassesThrough(t *testing.T) {
	router := setupMiddlewareRouter(false)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")
}

func TestOptionalSession_ResolvesWhenPresent(t *testing.T) {
	router := setupMiddlewareRouter(false)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prov-1")
}
