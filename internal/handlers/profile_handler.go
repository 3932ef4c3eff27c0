package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/models"
)

func GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var user models.User
	if err := gormDB.Preload("Bookings.Event").Preload("Registrations.Event").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		respondInternal(c, "load profile", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
