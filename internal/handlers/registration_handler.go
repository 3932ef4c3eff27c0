package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/models"
)

var (
	errAlreadyRegistered = errors.New("already registered")
	errEventFull         = errors.New("event is full")
	errEventClosed       = errors.New("event is not open for registration")
)

// RegisterForEvent records a seatless RSVP. The event row is locked while the
// registrations are counted, so two callers cannot both take the last place.
func RegisterForEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var registration models.Registration
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := helpers.ForUpdate(tx).Where("id = ?", eventID).First(&event).Error; err != nil {
			return err
		}
		if !event.IsActive || event.IsPast(today()) {
			return errEventClosed
		}

		var existing int64
		if err := tx.Model(&models.Registration{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyRegistered
		}

		var registered int64
		if err := tx.Model(&models.Registration{}).Where("event_id = ?", eventID).Count(&registered).Error; err != nil {
			return err
		}
		if registered >= int64(event.Capacity) {
			return errEventFull
		}

		registration = models.Registration{UserID: userID, EventID: eventID}
		if err := tx.Create(&registration).Error; err != nil {
			if helpers.IsUniqueViolation(err) {
				return errAlreadyRegistered
			}
			return err
		}
		registration.Event = &event
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		case errors.Is(err, errEventClosed):
			helpers.RespondWithError(c, http.StatusBadRequest, "Event is not open for registration.")
		case errors.Is(err, errAlreadyRegistered):
			helpers.RespondWithError(c, http.StatusConflict, "You are already registered for this event.")
		case errors.Is(err, errEventFull):
			helpers.RespondWithError(c, http.StatusConflict, "Event is full.")
		default:
			respondInternal(c, "register for event", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Registered successfully.",
		"registration": registration,
	})
}

func CancelRegistration(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id", "event")
	if !ok {
		return
	}
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	result := gormDB.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&models.Registration{})
	if result.Error != nil {
		respondInternal(c, "cancel registration", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled successfully."})
}

func ListMyRegistrations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var registrations []models.Registration
	if err := gormDB.Preload("Event").Where("user_id = ?", userID).Order("created_at DESC").Find(&registrations).Error; err != nil {
		respondInternal(c, "list registrations", err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}
