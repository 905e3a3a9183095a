package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studyhall/internal/auth"
	"studyhall/internal/domain"
	"studyhall/internal/store"
)

type AuthAPI struct {
	DB  *store.Postgres
	JWT *auth.JWT
	TTL time.Duration
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

// AuthRequired verifies the bearer token and stashes the identity on the
// request context.
func AuthRequired(jwt *auth.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token"})
			return
		}
		id, err := jwt.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}
		c.Set("user_id", string(id.UserID))
		c.Set("username", id.Username)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	return domain.Identity{
		UserID:   domain.UserID(c.GetString("user_id")),
		Username: c.GetString("username"),
	}
}

func (a *AuthAPI) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if len(req.Password) < 8 || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username or weak password"})
		return
	}

	u, err := a.DB.CreateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
		return
	}
	a.respondToken(c, u)
}

func (a *AuthAPI) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	u, err := a.DB.VerifyUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	a.respondToken(c, u)
}

func (a *AuthAPI) Me(c *gin.Context) {
	c.JSON(http.StatusOK, identityFrom(c))
}

func (a *AuthAPI) respondToken(c *gin.Context, u store.User) {
	id := domain.Identity{UserID: domain.UserID(u.ID), Username: u.Username}
	tok, err := a.JWT.Sign(id, a.TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, tokenResp{Token: tok, User: id})
}
