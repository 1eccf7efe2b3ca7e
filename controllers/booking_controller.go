package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Saroj9823Dangol/event-management-sub001/clients"
	"github.com/Saroj9823Dangol/event-management-sub001/logger"
	"github.com/Saroj9823Dangol/event-management-sub001/middleware"
	"github.com/Saroj9823Dangol/event-management-sub001/models"
	"github.com/Saroj9823Dangol/event-management-sub001/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type OpenSessionRequest struct {
	EventID string `json:"event_id" validate:"required,max=128"`
}

type SelectLineupRequest struct {
	LineupID string `json:"lineup_id" validate:"required,max=128"`
}

type SetQuantityRequest struct {
	TierID   string `json:"tier_id" validate:"required,max=128"`
	Quantity *int   `json:"quantity" validate:"required,max=100"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type AcceptTermsRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

// BookingController exposes booking sessions to the storefront.
type BookingController struct {
	sessions       *services.SessionManager
	validate       *validator.Validate
	bookingURLBase string
	logger         *zap.Logger
}

func NewBookingController(sessions *services.SessionManager, bookingURLBase string, logger *zap.Logger) *BookingController {
	return &BookingController{
		sessions:       sessions,
		validate:       validator.New(),
		bookingURLBase: bookingURLBase,
		logger:         logger,
	}
}

// OpenSession handles POST /sessions.
func (bc *BookingController) OpenSession(c *gin.Context) {
	userID, ok := bc.userID(c)
	if !ok {
		return
	}
	var req OpenSessionRequest
	if !bc.bind(c, &req) {
		return
	}

	session, err := bc.sessions.Open(c.Request.Context(), req.EventID, userID)
	if err != nil {
		bc.fail(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session.Snapshot(), "event": session.Event()})
}

// GetSession handles GET /sessions/:id.
func (bc *BookingController) GetSession(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// SelectLineup handles PUT /sessions/:id/lineup.
func (bc *BookingController) SelectLineup(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	var req SelectLineupRequest
	if !bc.bind(c, &req) {
		return
	}
	if err := session.SelectLineup(req.LineupID); err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// SetQuantity handles PUT /sessions/:id/tickets.
func (bc *BookingController) SetQuantity(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if !bc.bind(c, &req) {
		return
	}
	if err := session.SetQuantity(req.TierID, *req.Quantity); err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// ApplyPromo handles POST /sessions/:id/promo.
func (bc *BookingController) ApplyPromo(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	var req ApplyPromoRequest
	if !bc.bind(c, &req) {
		return
	}
	if err := session.ApplyPromo(c.Request.Context(), req.Code); err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// RemovePromo handles DELETE /sessions/:id/promo.
func (bc *BookingController) RemovePromo(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	if err := session.RemovePromo(); err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// AcceptTerms handles PUT /sessions/:id/terms.
func (bc *BookingController) AcceptTerms(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	var req AcceptTermsRequest
	if !bc.bind(c, &req) {
		return
	}
	if err := session.AcceptTerms(*req.Accepted); err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Submit handles POST /sessions/:id/submit.
func (bc *BookingController) Submit(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	order, err := session.Submit(c.Request.Context())
	if err != nil {
		bc.fail(c, err, session)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "session": session.Snapshot()})
}

// SessionCalendar handles GET /sessions/:id/calendar. With ?format=ics the
// invite is returned as a file download.
func (bc *BookingController) SessionCalendar(c *gin.Context) {
	session, ok := bc.session(c)
	if !ok {
		return
	}
	snap := session.Snapshot()
	orderID := ""
	if snap.Order != nil {
		orderID = snap.Order.ID
	}
	artifact, err := session.CalendarArtifacts(bc.bookingURL(orderID))
	if err != nil {
		bc.fail(c, err, session)
		return
	}
	bc.writeCalendar(c, artifact)
}

// OrderCalendar handles GET /orders/:order_id/calendar from the stored receipt.
func (bc *BookingController) OrderCalendar(c *gin.Context) {
	userID, ok := bc.userID(c)
	if !ok {
		return
	}
	receipt, err := bc.sessions.Receipt(c.Request.Context(), c.Param("order_id"), userID)
	if err != nil {
		bc.fail(c, err, nil)
		return
	}
	artifact := services.BuildCalendarArtifacts(&receipt.Order, &receipt.Lineup, bc.bookingURL(receipt.Order.ID))
	bc.writeCalendar(c, artifact)
}

// CloseSession handles DELETE /sessions/:id.
func (bc *BookingController) CloseSession(c *gin.Context) {
	userID, ok := bc.userID(c)
	if !ok {
		return
	}
	if err := bc.sessions.Close(c.Param("id"), userID); err != nil {
		bc.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (bc *BookingController) writeCalendar(c *gin.Context, artifact models.CalendarArtifact) {
	if c.Query("format") == "ics" {
		c.Header("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(artifact.InvitePayload))
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": artifact})
}

func (bc *BookingController) bookingURL(orderID string) string {
	if bc.bookingURLBase == "" || orderID == "" {
		return ""
	}
	return strings.TrimRight(bc.bookingURLBase, "/") + "/" + url.PathEscape(orderID)
}

func (bc *BookingController) userID(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": err.Error()})
		return "", false
	}
	return userID, true
}

// session resolves :id among the caller's own sessions.
func (bc *BookingController) session(c *gin.Context) (*services.Session, bool) {
	userID, ok := bc.userID(c)
	if !ok {
		return nil, false
	}
	session, err := bc.sessions.Get(c.Param("id"), userID)
	if err != nil {
		bc.fail(c, err, nil)
		return nil, false
	}
	return session, true
}

func (bc *BookingController) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return false
	}
	if err := bc.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": validationMessage(err)})
		return false
	}
	return true
}

func (bc *BookingController) fail(c *gin.Context, err error, session *services.Session) {
	status := StatusFor(err)
	body := gin.H{"error": errorCode(err), "message": err.Error()}

	var orderErr *services.OrderError
	if errors.As(err, &orderErr) && len(orderErr.Tiers) > 0 {
		body["tiers"] = orderErr.Tiers
	}
	if session != nil {
		body["session"] = session.Snapshot()
	}

	if status >= http.StatusInternalServerError {
		logger.For(c.Request.Context(), bc.logger).Error("Booking request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, body)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrReceiptNotFound):
		return "not_found"
	}
	return services.ErrorCode(err)
}

// StatusFor maps a booking error onto an HTTP status.
func StatusFor(err error) int {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		if ve.Code == services.CodeNetworkFailure {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	}

	var oe *services.OrderError
	if errors.As(err, &oe) {
		switch oe.Code {
		case services.CodeSoldOut, services.CodePromoInvalidated:
			return http.StatusConflict
		case services.CodePaymentDeclined:
			return http.StatusPaymentRequired
		default:
			return http.StatusBadGateway
		}
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadySubmitting),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrStaleResult),
		errors.Is(err, services.ErrSessionClosed),
		errors.Is(err, services.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoLineup),
		errors.Is(err, services.ErrUnknownLineup),
		errors.Is(err, services.ErrUnknownTier),
		errors.Is(err, services.ErrNegativeQuantity),
		errors.Is(err, services.ErrQuantityTooLarge),
		errors.Is(err, services.ErrEmptySelection),
		errors.Is(err, services.ErrTermsNotAccepted):
		return http.StatusUnprocessableEntity
	}

	var httpErr *clients.HTTPError
	if errors.As(err, &httpErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
