package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/models"
)

const eventDateLayout = "2006-01-02"

type CreateEventRequest struct {
	Title       string   `json:"title" binding:"required,notblank"`
	Description string   `json:"description" binding:"required,notblank"`
	EventDate   string   `json:"event_date" binding:"required,datetime=2006-01-02"`
	StartTime   string   `json:"start_time" binding:"required,notblank"`
	EndTime     string   `json:"end_time" binding:"required,notblank"`
	Duration    string   `json:"duration" binding:"required,notblank"`
	Location    string   `json:"location" binding:"required,notblank"`
	Price       float64  `json:"price" binding:"gte=0"`
	Capacity    int      `json:"capacity" binding:"required,gte=1"`
	Tags        []string `json:"tags" binding:"omitempty,dive,notblank"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateEventRequest carries only the fields to change. Booked seats are not
// part of it.
type UpdateEventRequest struct {
	Title       *string   `json:"title" binding:"omitempty,notblank"`
	Description *string   `json:"description" binding:"omitempty,notblank"`
	EventDate   *string   `json:"event_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime   *string   `json:"start_time" binding:"omitempty,notblank"`
	EndTime     *string   `json:"end_time" binding:"omitempty,notblank"`
	Duration    *string   `json:"duration" binding:"omitempty,notblank"`
	Location    *string   `json:"location" binding:"omitempty,notblank"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Capacity    *int      `json:"capacity" binding:"omitempty,gte=1"`
	Tags        *[]string `json:"tags"`
	IsActive    *bool     `json:"is_active"`
}

var errCapacityBelowBooked = errors.New("capacity below booked seats")

func today() time.Time {
	return models.DateOnly(time.Now())
}

func CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	eventDate, _ := time.Parse(eventDateLayout, req.EventDate)

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	event := models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		EventDate:   eventDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
		Location:    req.Location,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Tags:        req.Tags,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	if err := gormDB.Create(&event).Error; err != nil {
		respondInternal(c, "create event", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully.",
		"event":   event,
	})
}

func GetEvent(c *gin.Context) {
	eventID, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		respondInternal(c, "load event", err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func ListAllEvents(c *gin.Context) {
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var events []models.Event
	if err := gormDB.Order("event_date ASC").Find(&events).Error; err != nil {
		respondInternal(c, "list events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// ListEventsPaginated lists active events, optionally only upcoming or only
// previous ones relative to today.
func ListEventsPaginated(c *gin.Context) {
	page, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	query := gormDB.Model(&models.Event{}).Where("is_active = ?", true)
	order := "event_date ASC"
	switch c.Query("dateFilter") {
	case "":
	case "upcoming":
		query = query.Where("event_date >= ?", today())
	case "previous":
		query = query.Where("event_date < ?", today())
		order = "event_date DESC"
	default:
		helpers.RespondWithError(c, http.StatusBadRequest, "dateFilter must be upcoming or previous.")
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondInternal(c, "count events", err)
		return
	}

	var events []models.Event
	if err := query.Order(order).Offset(helpers.Offset(page, limit)).Limit(limit).Find(&events).Error; err != nil {
		respondInternal(c, "list events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"last_page": helpers.LastPage(total, limit),
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func SearchEvents(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Search query is required.")
		return
	}

	page, limit, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	query := gormDB.Model(&models.Event{}).
		Where("is_active = ?", true).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondInternal(c, "count search results", err)
		return
	}

	var events []models.Event
	if err := query.Order("event_date ASC").Offset(helpers.Offset(page, limit)).Limit(limit).Find(&events).Error; err != nil {
		respondInternal(c, "search events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"last_page": helpers.LastPage(total, limit),
	})
}

func UpdateEvent(c *gin.Context) {
	eventID, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var event models.Event
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := helpers.ForUpdate(tx).Where("id = ?", eventID).First(&event).Error; err != nil {
			return err
		}

		columns := applyEventUpdate(&event, &req)
		if len(columns) == 0 {
			return nil
		}
		columns = append(columns, "updated_at")

		update := tx.Model(&event).Select(columns)
		if req.Capacity != nil {
			update = update.Where("booked_seats <= ?", *req.Capacity)
		}
		result := update.Updates(&event)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCapacityBelowBooked
		}
		return tx.Where("id = ?", eventID).First(&event).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		case errors.Is(err, errCapacityBelowBooked):
			helpers.RespondWithError(c, http.StatusConflict,
				fmt.Sprintf("Capacity cannot be lower than the %d seats already booked.", event.BookedSeats))
		default:
			respondInternal(c, "update event", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// applyEventUpdate copies the present fields onto event and returns their
// column names.
func applyEventUpdate(event *models.Event, req *UpdateEventRequest) []string {
	var columns []string
	set := func(column string, apply func()) {
		apply()
		columns = append(columns, column)
	}

	if req.Title != nil {
		set("title", func() { event.Title = strings.TrimSpace(*req.Title) })
	}
	if req.Description != nil {
		set("description", func() { event.Description = *req.Description })
	}
	if req.EventDate != nil {
		date, _ := time.Parse(eventDateLayout, *req.EventDate)
		set("event_date", func() { event.EventDate = date })
	}
	if req.StartTime != nil {
		set("start_time", func() { event.StartTime = *req.StartTime })
	}
	if req.EndTime != nil {
		set("end_time", func() { event.EndTime = *req.EndTime })
	}
	if req.Duration != nil {
		set("duration", func() { event.Duration = *req.Duration })
	}
	if req.Location != nil {
		set("location", func() { event.Location = *req.Location })
	}
	if req.Price != nil {
		set("price", func() { event.Price = *req.Price })
	}
	if req.Capacity != nil {
		set("capacity", func() { event.Capacity = *req.Capacity })
	}
	if req.Tags != nil {
		set("tags", func() { event.Tags = *req.Tags })
	}
	if req.IsActive != nil {
		set("is_active", func() { event.IsActive = *req.IsActive })
	}
	return columns
}

func DeleteEvent(c *gin.Context) {
	eventID, ok := pathID(c, "id", "event")
	if !ok {
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var inUse bool
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := helpers.ForUpdate(tx).Where("id = ?", eventID).First(&event).Error; err != nil {
			return err
		}

		var bookings, registrations int64
		if err := tx.Model(&models.Booking{}).Where("event_id = ?", eventID).Count(&bookings).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Registration{}).Where("event_id = ?", eventID).Count(&registrations).Error; err != nil {
			return err
		}
		if bookings+registrations > 0 {
			inUse = true
			return nil
		}

		return tx.Delete(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		respondInternal(c, "delete event", err)
		return
	}
	if inUse {
		helpers.RespondWithError(c, http.StatusConflict, "Event has bookings or registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
}

func GetEventStatistics(c *gin.Context) {
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var stats struct {
		TotalEvents    int64 `json:"total_events"`
		ActiveEvents   int64 `json:"active_events"`
		UpcomingEvents int64 `json:"upcoming_events"`
		PastEvents     int64 `json:"past_events"`
	}

	now := today()
	counts := []struct {
		dst   *int64
		query func(*gorm.DB) *gorm.DB
	}{
		{&stats.TotalEvents, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.ActiveEvents, func(q *gorm.DB) *gorm.DB { return q.Where("is_active = ?", true) }},
		{&stats.UpcomingEvents, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ? AND event_date >= ?", true, now)
		}},
		{&stats.PastEvents, func(q *gorm.DB) *gorm.DB { return q.Where("event_date < ?", now) }},
	}
	for _, cnt := range counts {
		if err := cnt.query(gormDB.Model(&models.Event{})).Count(cnt.dst).Error; err != nil {
			respondInternal(c, "event statistics", err)
			return
		}
	}

	c.JSON(http.StatusOK, stats)
}
