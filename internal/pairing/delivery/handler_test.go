package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cubent-backend/internal/pairing/dto"
	"cubent-backend/internal/pairing/usecase"
	"cubent-backend/pkg/identity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type mockPairingUsecase struct {
	initiateFn func(ident *identity.Identity, req *dto.InitiateSignInRequest) (string, error)
	completeFn func(ident *identity.Identity, req *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error)
	redeemFn   func(deviceID, state string) (string, error)
}

func (m *mockPairingUsecase) InitiateSignIn(_ context.Context, ident *identity.Identity, req *dto.InitiateSignInRequest) (string, error) {
	return m.initiateFn(ident, req)
}

func (m *mockPairingUsecase) CompletePairing(_ context.Context, ident *identity.Identity, req *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error) {
	return m.completeFn(ident, req)
}

func (m *mockPairingUsecase) RedeemToken(deviceID, state string) (string, error) {
	return m.redeemFn(deviceID, state)
}

func setupRouter(uc usecase.PairingUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPairingHandler(uc)
	router.GET("/extension/sign-in", handler.InitiateSignIn)
	router.POST("/extension/complete", handler.CompletePairing)
	router.GET("/extension/token", handler.RetrieveToken)
	return router
}

func TestInitiateSignIn_Redirects(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{
		initiateFn: func(_ *identity.Identity, req *dto.InitiateSignInRequest) (string, error) {
			assert.Equal(t, "s1", req.State)
			assert.Equal(t, "d1", req.DeviceID)
			return "https://app.example.dev/extension-auth?ticket=t1&state=s1", nil
		},
	})

	req, _ := http.NewRequest("GET", "/extension/sign-in?state=s1&device_id=d1&auth_redirect=https%3A%2F%2Fapp.example.dev%2Fextension-auth", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.dev/extension-auth?ticket=t1&state=s1", w.Header().Get("Location"))
}

func TestInitiateSignIn_MissingParams(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{
		initiateFn: func(*identity.Identity, *dto.InitiateSignInRequest) (string, error) {
			t.Fatal("usecase must not be called on validation failure")
			return "", nil
		},
	})

	req, _ := http.NewRequest("GET", "/extension/sign-in?device_id=d1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompletePairing_Success(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{
		completeFn: func(_ *identity.Identity, req *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error) {
			return &dto.CompletePairingResponse{
				Success:     true,
				Token:       "tok",
				RedirectURL: "vscode://cubent.cubent/auth/callback?token=tok&state=" + req.State,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CompletePairingRequest{DeviceID: "d1", State: "s1", AcceptTerms: true})
	req, _ := http.NewRequest("POST", "/extension/complete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.CompletePairingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", resp.Token)
	assert.Contains(t, resp.RedirectURL, "state=s1")
}

func TestCompletePairing_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized},
		{"user not found", usecase.ErrUserNotFound, http.StatusNotFound},
		{"terms required", usecase.ErrTermsRequired, http.StatusBadRequest},
		{"internal errors stay generic", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(&mockPairingUsecase{
				completeFn: func(*identity.Identity, *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error) {
					return nil, tc.err
				},
			})

			body, _ := json.Marshal(dto.CompletePairingRequest{DeviceID: "d1", State: "s1"})
			req, _ := http.NewRequest("POST", "/extension/complete", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			// Raw database/provider error text never reaches the caller.
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestCompletePairing_MissingBody(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{})

	req, _ := http.NewRequest("POST", "/extension/complete", bytes.NewReader([]byte(`{"device_id":"d1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetrieveToken_Success(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{
		redeemFn: func(deviceID, state string) (string, error) {
			assert.Equal(t, "d1", deviceID)
			assert.Equal(t, "s1", state)
			return "tok", nil
		},
	})

	req, _ := http.NewRequest("GET", "/extension/token?device_id=d1&state=s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.RetrieveTokenResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", resp.Token)
}

func TestRetrieveToken_NotFoundIsBenign(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{
		redeemFn: func(string, string) (string, error) {
			return "", usecase.ErrTokenNotFound
		},
	})

	req, _ := http.NewRequest("GET", "/extension/token?device_id=d1&state=s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRetrieveToken_MissingParams(t *testing.T) {
	router := setupRouter(&mockPairingUsecase{})

	req, _ := http.NewRequest("GET", "/extension/token?device_id=d1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
