package routes

import (
	"github.com/Saroj9823Dangol/event-management-sub001/controllers"
	"github.com/Saroj9823Dangol/event-management-sub001/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking session routes.
func RegisterBookingRoutes(r *gin.Engine, bc *controllers.BookingController, promoLimiter *middleware.RateLimiter) {
	bookings := r.Group("/bff/bookings")
	bookings.Use(middleware.AuthMiddleware())

	sessions := bookings.Group("/sessions")
	sessions.POST("", bc.OpenSession)
	sessions.GET("/:id", bc.GetSession)
	sessions.DELETE("/:id", bc.CloseSession)
	sessions.PUT("/:id/lineup", bc.SelectLineup)
	sessions.PUT("/:id/tickets", bc.SetQuantity)
	sessions.POST("/:id/promo", promoLimiter.Middleware(), bc.ApplyPromo)
	sessions.DELETE("/:id/promo", bc.RemovePromo)
	sessions.PUT("/:id/terms", bc.AcceptTerms)
	sessions.POST("/:id/submit", bc.Submit)
	sessions.GET("/:id/calendar", bc.SessionCalendar)

	bookings.GET("/orders/:order_id/calendar", bc.OrderCalendar)
}
