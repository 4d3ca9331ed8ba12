package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/mw"
)

// NewRouter creates and configures the Gin router.
func NewRouter(engine *alloc.Engine, cfg *config.Config, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := engine.DB()
	handler := NewHandler(engine, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Application intake review
		api.GET("/applications", GetPendingApplications(db))
		api.POST("/applications/:application_id/approve", handler.ApproveApplication)
		api.POST("/applications/:application_id/reject", handler.RejectApplication)

		// Seat lifecycle
		api.POST("/applicants/:applicant_id/dismiss", handler.DismissSeat)
		api.POST("/applicants/:applicant_id/withdraw", handler.WithdrawSeat)
		api.POST("/rooms/:room_id/fill", handler.FillVacantRoom)
		api.GET("/applicants/:applicant_id/seat", GetApplicantSeat(db))

		// Reallocation runs
		api.POST("/reallocations", handler.RunReallocation)
		api.GET("/reallocations", handler.ListReallocations)

		// Read views
		api.GET("/seats/allocated", caching, GetAllocatedSeats(db))
		api.GET("/seats/waiting", caching, GetWaitingList(db))
		api.GET("/rooms", caching, GetRooms(db))
		api.GET("/rooms/:room_id/occupants", caching, GetRoomOccupants(db))

		// Notifications
		api.GET("/applicants/:applicant_id/notifications", GetNotifications(db))
		api.POST("/applicants/:applicant_id/notifications/:notification_id/read", MarkNotificationRead(db))
		api.PUT("/applicants/:applicant_id/push-subscription", handler.PutPushSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
