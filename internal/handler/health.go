package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis is optional: without a client it reports "disabled". With one, the
// receipt dead-letter depth is included.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		var receipts *worker.DLQStats
		if rdb != nil {
			redisStatus = "connected"
			if infra.PingRedis(ctx, rdb) != nil {
				redisStatus = "error"
			} else if stats, err := worker.QueueDLQStats(ctx, rdb, worker.QueueReceipt); err == nil {
				receipts = &stats
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if receipts != nil {
			body["receipt_dlq"] = receipts
		}
		c.JSON(status, body)
	}
}
