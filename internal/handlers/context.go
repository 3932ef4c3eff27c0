package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/middleware"
)

const internalErrorMessage = "Something went wrong. Please try again later."

func dbFrom(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.WithContext(c.Request.Context()), true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := helpers.ParseUUIDParam(c, name)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID.")
		return uuid.Nil, false
	}
	return id, true
}

// respondInternal logs the storage error and hides it from the client.
func respondInternal(c *gin.Context, msg string, err error) {
	middleware.GetLogger(c).Error(msg, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	helpers.RespondWithError(c, http.StatusInternalServerError, internalErrorMessage)
}
