package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/models"
)

func ListUsers(c *gin.Context) {
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var users []models.User
	if err := gormDB.Order("created_at ASC").Find(&users).Error; err != nil {
		respondInternal(c, "list users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func GetUserByID(c *gin.Context) {
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	findUser(c, "id = ?", userID)
}

func GetUserByEmail(c *gin.Context) {
	findUser(c, "email = ?", normalizeEmail(c.Param("email")))
}

func findUser(c *gin.Context, cond string, arg any) {
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var user models.User
	if err := gormDB.Where(cond, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		respondInternal(c, "load user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
