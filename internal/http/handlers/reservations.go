package handlers

import (
	"net/http"

	"busbenin/internal/http/middleware"
	"busbenin/internal/services"

	"github.com/gin-gonic/gin"
)

// ReservationHandler exposes the booking flow: create with payment intent,
// caller-driven payment verification, cancellation and listings.
type ReservationHandler struct {
	Service services.ReservationService
}

func (h ReservationHandler) service(c *gin.Context) services.ReservationService {
	s := h.Service
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// Create books seats and opens the matching payment transaction. The
// response carries the payment URL the client must redirect the user to.
func (h ReservationHandler) Create(c *gin.Context) {
	var in services.ReservationInput
	if !BindJSONOrError(c, &in) {
		return
	}
	rc := middleware.GetRequestContext(c)
	in.UserID = int64(rc.UserID)

	intent, err := h.service(c).CreateAndPay(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// VerifyPayment reconciles the stored reservation with the gateway.
func (h ReservationHandler) VerifyPayment(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	rc := middleware.GetRequestContext(c)
	if _, err := h.Service.Get(id, rc); err != nil {
		RespondDomainError(c, err)
		return
	}

	result, err := h.service(c).VerifyPayment(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel voids a reservation still waiting for its payment.
func (h ReservationHandler) Cancel(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	rc := middleware.GetRequestContext(c)
	if _, err := h.Service.Get(id, rc); err != nil {
		RespondDomainError(c, err)
		return
	}

	ok, err := h.service(c).Cancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ok {
		RespondError(c, http.StatusConflict, "cette réservation ne peut plus être annulée", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "réservation annulée"})
}

// Get returns one reservation when the caller owns it or is admin.
func (h ReservationHandler) Get(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	res, err := h.Service.Get(id, middleware.GetRequestContext(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListMine returns the caller's reservations.
func (h ReservationHandler) ListMine(c *gin.Context) {
	out, err := h.Service.ListFor(middleware.GetRequestContext(c), false)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

// ListAdmin returns all reservations for admins, or the compagnie's own.
func (h ReservationHandler) ListAdmin(c *gin.Context) {
	out, err := h.Service.ListFor(middleware.GetRequestContext(c), true)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}
