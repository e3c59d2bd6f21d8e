package handlers

import (
	"net/http"
	"strings"
	"time"

	"busbenin/internal/domain"
	"busbenin/internal/domain/models"
	"busbenin/internal/http/middleware"
	"busbenin/internal/repositories"
	"busbenin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues and validates accounts. Tokens are HMAC-signed JWTs
// carrying user_id, admin, compagnie_id and email claims.
type AuthHandler struct {
	Users     repositories.UserRepository
	JWTSecret string
	JWTExpiry time.Duration
}

type registerRequest struct {
	Nom       string `json:"nom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	req.Nom = utils.NormalizeSpace(req.Nom)
	req.Email = strings.TrimSpace(req.Email)
	if req.Nom == "" {
		RespondError(c, http.StatusBadRequest, "veuillez entrer votre nom", nil)
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		RespondError(c, http.StatusBadRequest, "adresse email invalide", nil)
		return
	}
	if len(req.Password) < 8 {
		RespondError(c, http.StatusBadRequest, "le mot de passe doit contenir au moins 8 caractères", nil)
		return
	}
	if req.Telephone != "" && !utils.ValidPhoneBJ(req.Telephone) {
		RespondError(c, http.StatusBadRequest, "le numéro doit être au format +22901XXXXXXXX", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "hachage du mot de passe", Err: err})
		return
	}

	id, err := h.Users.CreateUser(models.User{
		Nom:          req.Nom,
		Email:        req.Email,
		Telephone:    strings.TrimSpace(req.Telephone),
		PasswordHash: string(hash),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "register", req.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "compte créé",
		"user_id": id,
	})
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		RespondError(c, http.StatusUnauthorized, "email ou mot de passe incorrect", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		RespondError(c, http.StatusUnauthorized, "email ou mot de passe incorrect", nil)
		return
	}

	token, err := h.signToken(user.ID, user.Admin, user.CompagnieID, user.Email)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "signature du token", Err: err})
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", user.Email)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.ToPublic(),
	})
}

func (h AuthHandler) signToken(userID int64, admin bool, compagnieID int64, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"admin":   admin,
		"email":   email,
		"iat":     now.Unix(),
		"exp":     now.Add(h.JWTExpiry).Unix(),
	}
	if compagnieID > 0 {
		claims["compagnie_id"] = compagnieID
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.JWTSecret))
}
