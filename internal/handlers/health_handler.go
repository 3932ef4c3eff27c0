package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventbuddy/internal/helpers"
)

func Health(c *gin.Context) {
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	sqlDB, err := gormDB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Database is unreachable.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
