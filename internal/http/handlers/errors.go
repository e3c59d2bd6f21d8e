package handlers

import (
	"net/http"

	"busbenin/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors onto HTTP statuses with a French
// user-facing message. Unknown errors become 500 without leaking details.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondError(c, http.StatusBadRequest, err.Error(), nil)
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "ressource introuvable", err)
	case domain.IsConflict(err):
		RespondError(c, http.StatusConflict, err.Error(), nil)
	case domain.IsGateway(err):
		RespondError(c, http.StatusBadGateway, "le prestataire de paiement est indisponible", err)
	case domain.IsConfig(err):
		RespondError(c, http.StatusInternalServerError, "configuration du service incomplète", nil)
	default:
		RespondError(c, http.StatusInternalServerError, "erreur interne du serveur", err)
	}
}
