package delivery

import (
	"errors"
	"net/http"

	authdelivery "cubent-backend/internal/auth/delivery"
	"cubent-backend/internal/pairing/dto"
	"cubent-backend/internal/pairing/usecase"
	"cubent-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PairingHandler serves the device-pairing endpoints used by the editor
// extension and the approving browser.
type PairingHandler struct {
	pairingUsecase usecase.PairingUsecase
}

// NewPairingHandler creates a new PairingHandler
func NewPairingHandler(pairingUsecase usecase.PairingUsecase) *PairingHandler {
	return &PairingHandler{pairingUsecase: pairingUsecase}
}

// InitiateSignIn is the browser entry point of the pairing flow. It always
// answers with a redirect: back to the device with a ticket, or into
// interactive sign-in.
func (h *PairingHandler) InitiateSignIn(c *gin.Context) {
	var req dto.InitiateSignInRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident := authdelivery.IdentityFrom(c)
	redirect, err := h.pairingUsecase.InitiateSignIn(c.Request.Context(), ident, &req)
	if err != nil {
		zap.L().Error("Pairing initiate failed",
			zap.String("device", logger.Prefix(req.DeviceID, 8)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Redirect(http.StatusFound, redirect)
}

// CompletePairing stores a single-use token for the device once the
// authenticated browser approves.
func (h *PairingHandler) CompletePairing(c *gin.Context) {
	var req dto.CompletePairingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident := authdelivery.IdentityFrom(c)
	resp, err := h.pairingUsecase.CompletePairing(c.Request.Context(), ident, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, usecase.ErrTermsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "terms of service must be accepted", "code": "TERMS_REQUIRED"})
		default:
			zap.L().Error("Pairing complete failed",
				zap.String("device", logger.Prefix(req.DeviceID, 8)),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RetrieveToken is the endpoint the device polls. NotFound is the expected
// answer until the browser side completes.
func (h *PairingHandler) RetrieveToken(c *gin.Context) {
	var req dto.RetrieveTokenRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.pairingUsecase.RedeemToken(req.DeviceID, req.State)
	if err != nil {
		if errors.Is(err, usecase.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "token not found or expired"})
			return
		}
		zap.L().Error("Token retrieval failed",
			zap.String("device", logger.Prefix(req.DeviceID, 8)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.RetrieveTokenResponse{Success: true, Token: token})
}
