package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/ledger"
	"github.com/farellandr/eventbuddy/internal/middleware"
	"github.com/farellandr/eventbuddy/internal/models"
)

type BookSeatsRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
	Seats   *int      `json:"seats" binding:"required"`
}

type VerifyPassRequest struct {
	Pass string `json:"pass" binding:"required"`
}

// LedgerErrorStatus maps ledger errors onto HTTP status codes. Anything it
// does not recognise is a 500.
func LedgerErrorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidSeatCount), errors.Is(err, ledger.ErrEventNotBookable):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrEventNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateBooking), errors.Is(err, ledger.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondLedgerError(c *gin.Context, err error) {
	status := LedgerErrorStatus(err)
	if status == http.StatusInternalServerError {
		respondInternal(c, "seat ledger", err)
		return
	}
	helpers.RespondWithError(c, status, err.Error())
}

func ledgerFrom(c *gin.Context) (*ledger.Ledger, bool) {
	l := middleware.GetLedger(c)
	if l == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Seat ledger not configured.")
		return nil, false
	}
	return l, true
}

func BookSeats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req BookSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	l, ok := ledgerFrom(c)
	if !ok {
		return
	}

	booking, err := l.Reserve(c.Request.Context(), userID, req.EventID, *req.Seats)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Seats booked successfully.",
		"booking": booking,
	})
}

func cancelBooking(c *gin.Context, role models.Role) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	l, ok := ledgerFrom(c)
	if !ok {
		return
	}

	booking, err := l.Cancel(c.Request.Context(), bookingID, ledger.Actor{UserID: userID, Role: role})
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully.",
		"booking": booking,
	})
}

// CancelBooking only reaches the caller's own bookings, whatever their role.
func CancelBooking(c *gin.Context) {
	cancelBooking(c, models.RoleUser)
}

func AdminCancelBooking(c *gin.Context) {
	cancelBooking(c, models.RoleAdmin)
}

func ListMyBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listBookings(c, ownBookings(userID), false)
}

func ListMyBookingsPaginated(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listBookings(c, ownBookings(userID), true)
}

func AdminListBookings(c *gin.Context) {
	listBookings(c, allBookings, false)
}

func AdminListBookingsPaginated(c *gin.Context) {
	listBookings(c, allBookings, true)
}

type bookingScope struct {
	filter   func(*gorm.DB) *gorm.DB
	preloads []string
}

func ownBookings(userID uuid.UUID) bookingScope {
	return bookingScope{
		filter:   func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) },
		preloads: []string{"Event"},
	}
}

var allBookings = bookingScope{
	filter:   func(q *gorm.DB) *gorm.DB { return q },
	preloads: []string{"Event", "User"},
}

func listBookings(c *gin.Context, scope bookingScope, paginate bool) {
	page, limit := 1, 0
	if paginate {
		var err error
		page, limit, err = helpers.ParsePagination(c)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	find := scope.filter(gormDB.Model(&models.Booking{})).Order("created_at DESC")
	for _, p := range scope.preloads {
		find = find.Preload(p)
	}

	var bookings []models.Booking
	if !paginate {
		if err := find.Find(&bookings).Error; err != nil {
			respondInternal(c, "list bookings", err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	var total int64
	if err := scope.filter(gormDB.Model(&models.Booking{})).Count(&total).Error; err != nil {
		respondInternal(c, "count bookings", err)
		return
	}
	if err := find.Offset(helpers.Offset(page, limit)).Limit(limit).Find(&bookings).Error; err != nil {
		respondInternal(c, "list bookings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      bookings,
		"total":     total,
		"page":      page,
		"last_page": helpers.LastPage(total, limit),
	})
}

func passSecret(c *gin.Context) ([]byte, bool) {
	tokens := middleware.GetTokenIssuer(c)
	if tokens == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Token issuer not configured.")
		return nil, false
	}
	return tokens.Secret(), true
}

// GetBookingPass renders the caller's booking pass as a QR code PNG.
func GetBookingPass(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, ledger.ErrBookingNotFound.Error())
			return
		}
		respondInternal(c, "load booking", err)
		return
	}

	secret, ok := passSecret(c)
	if !ok {
		return
	}

	pass := helpers.BuildBookingPass(secret, booking.ID, booking.EventID, booking.UserID)
	png, err := qrcode.Encode(pass, qrcode.Medium, 256)
	if err != nil {
		respondInternal(c, "encode booking pass", err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// VerifyBookingPass checks a scanned pass at the door. The booking must still
// exist and the signature must match its owner.
func VerifyBookingPass(c *gin.Context) {
	var req VerifyPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationError(c, err)
		return
	}

	pass, err := helpers.ParseBookingPass(req.Pass)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pass format.")
		return
	}

	gormDB, ok := dbFrom(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := gormDB.Preload("Event").Preload("User").Where("id = ?", pass.BookingID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, ledger.ErrBookingNotFound.Error())
			return
		}
		respondInternal(c, "load booking", err)
		return
	}

	secret, ok := passSecret(c)
	if !ok {
		return
	}
	if booking.EventID != pass.EventID || !pass.Verify(secret, booking.UserID) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid pass signature.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pass is valid.",
		"booking": booking,
	})
}
