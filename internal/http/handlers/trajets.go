package handlers

import (
	"net/http"
	"strings"

	"busbenin/internal/domain/models"
	"busbenin/internal/http/middleware"
	"busbenin/internal/repositories"
	"busbenin/internal/utils"

	"github.com/gin-gonic/gin"
)

type TrajetHandler struct {
	Trajets repositories.TrajetRepository
}

// Search answers the public route search: ?depart=Cotonou&arrivee=Parakou.
// Both parameters are optional; with neither, every trajet is returned.
func (h TrajetHandler) Search(c *gin.Context) {
	depart := strings.TrimSpace(c.Query("depart"))
	arrivee := strings.TrimSpace(c.Query("arrivee"))

	trajets, err := h.Trajets.Search(depart, arrivee)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trajets": trajets})
}

func (h TrajetHandler) Get(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	trajet, err := h.Trajets.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trajet)
}

type trajetRequest struct {
	Depart      string   `json:"depart"`
	Arrivee     string   `json:"arrivee"`
	Prix        int64    `json:"prix"`
	Horaires    []string `json:"horaires"`
	CompagnieID int64    `json:"compagnie_id"`

	// admin form convenience: "08:00, 14:00; 18:30" instead of an array
	HorairesTexte string `json:"horaires_texte,omitempty"`
}

func (req *trajetRequest) normalize() {
	if len(req.Horaires) == 0 && req.HorairesTexte != "" {
		req.Horaires = utils.SplitHoraires(req.HorairesTexte)
	}
}

func (req trajetRequest) validate() string {
	if strings.TrimSpace(req.Depart) == "" {
		return "la ville de départ est requise"
	}
	if strings.TrimSpace(req.Arrivee) == "" {
		return "la ville d'arrivée est requise"
	}
	if req.Prix <= 0 {
		return "le prix doit être supérieur à 0"
	}
	for _, h := range req.Horaires {
		if strings.TrimSpace(h) == "" {
			return "horaire vide dans la liste"
		}
	}
	return ""
}

// Create adds a trajet (admin only, enforced by the router).
func (h TrajetHandler) Create(c *gin.Context) {
	var req trajetRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.normalize()
	if msg := req.validate(); msg != "" {
		RespondError(c, http.StatusBadRequest, msg, nil)
		return
	}

	id, err := h.Trajets.Upsert(models.Trajet{
		Depart:      utils.NormalizeSpace(req.Depart),
		Arrivee:     utils.NormalizeSpace(req.Arrivee),
		Prix:        req.Prix,
		Horaires:    req.Horaires,
		CompagnieID: req.CompagnieID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "trajet", "create",
		req.Depart+" -> "+req.Arrivee)
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "trajet créé"})
}

// Update replaces the trajet identified by :id.
func (h TrajetHandler) Update(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	var req trajetRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.normalize()
	if msg := req.validate(); msg != "" {
		RespondError(c, http.StatusBadRequest, msg, nil)
		return
	}
	if _, err := h.Trajets.GetByID(id); err != nil {
		RespondDomainError(c, err)
		return
	}

	if _, err := h.Trajets.Upsert(models.Trajet{
		ID:          id,
		Depart:      utils.NormalizeSpace(req.Depart),
		Arrivee:     utils.NormalizeSpace(req.Arrivee),
		Prix:        req.Prix,
		Horaires:    req.Horaires,
		CompagnieID: req.CompagnieID,
	}); err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "message": "trajet mis à jour"})
}

func (h TrajetHandler) Delete(c *gin.Context) {
	id := ParamID(c)
	if id == 0 {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", nil)
		return
	}
	if err := h.Trajets.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "trajet", "delete", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "trajet supprimé"})
}
