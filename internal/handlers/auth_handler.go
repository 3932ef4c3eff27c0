package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/middleware"
	"github.com/farellandr/eventbuddy/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"required,notblank"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid role.")
		return
	}
	if role.IsAdmin() {
		if cfg := middleware.GetConfig(c); cfg == nil || !cfg.AllowAdminSignup {
			helpers.RespondWithError(c, http.StatusForbidden, "Admin accounts cannot be self-registered.")
			return
		}
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	email := normalizeEmail(req.Email)
	var existing int64
	if err := gormDB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		respondInternal(c, "check existing user", err)
		return
	}
	if existing > 0 {
		helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Password must be at most 72 bytes.")
		return
	}
	if err != nil {
		respondInternal(c, "hash password", err)
		return
	}

	user := models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := gormDB.Create(&user).Error; err != nil {
		if helpers.IsUniqueViolation(err) {
			helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
			return
		}
		respondInternal(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    user,
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var user models.User
	if err := gormDB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		respondInternal(c, "load user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	tokens := middleware.GetTokenIssuer(c)
	if tokens == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Token issuer not configured.")
		return
	}
	tokenString, err := tokens.Issue(&user)
	if err != nil {
		respondInternal(c, "issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

func Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	blacklist := middleware.GetBlacklist(c)
	if claims == nil || blacklist == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	blacklist.Add(claims.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}
