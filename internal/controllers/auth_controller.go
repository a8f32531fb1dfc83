package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"flights_backend/internal/auth"
	"flights_backend/internal/middleware"
	"flights_backend/internal/models"
	"flights_backend/internal/session"
	"flights_backend/internal/store"
)

type AuthController struct {
	users    store.UserRepository
	tokens   *auth.TokenManager
	sessions session.Store
}

func NewAuthController(users store.UserRepository, tokens *auth.TokenManager, sessions session.Store) *AuthController {
	return &AuthController{users: users, tokens: tokens, sessions: sessions}
}

type registerInput struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileInput struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

func (ac *AuthController) issue(c *gin.Context, status int, user *models.User) {
	token, expiresAt, err := ac.tokens.Generate(user)
	if err != nil {
		logrus.WithError(err).Error("could not generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}
	c.JSON(status, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (ac *AuthController) Register(c *gin.Context) {
	var input registerInput
	if !bind(c, &input) {
		return
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashedPassword,
	}
	if err := ac.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		logrus.WithError(err).Error("Register: could not create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	ac.issue(c, http.StatusCreated, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input loginInput
	if !bind(c, &input) {
		return
	}

	user, err := ac.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		logrus.WithError(err).Error("Login: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ac.issue(c, http.StatusOK, user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (ac *AuthController) Logout(c *gin.Context) {
	token, claims, ok := middleware.CurrentToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if err := ac.sessions.Add(c.Request.Context(), token, claims.TTL(time.Now())); err != nil {
		logrus.WithError(err).Error("Logout: could not revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	user, err := ac.users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logrus.WithError(err).Error("Me: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) UpdateMe(c *gin.Context) {
	var input updateProfileInput
	if !bind(c, &input) {
		return
	}

	ctx := c.Request.Context()
	id := middleware.CurrentIdentity(c)
	user, err := ac.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Password != nil {
		if user.Password, err = auth.HashPassword(*input.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}
	}

	if err := ac.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		logrus.WithError(err).Error("UpdateMe: could not save user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
