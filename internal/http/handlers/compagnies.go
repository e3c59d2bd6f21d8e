package handlers

import (
	"net/http"

	"busbenin/internal/repositories"

	"github.com/gin-gonic/gin"
)

type CompagnieHandler struct {
	Compagnies repositories.CompagnieRepository
}

func (h CompagnieHandler) List(c *gin.Context) {
	compagnies, err := h.Compagnies.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"compagnies": compagnies})
}

func (h CompagnieHandler) Get(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	compagnie, err := h.Compagnies.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, compagnie)
}
