package controller

import (
	"net/http"

	"valuate_backend/internal/config"
	"valuate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Counter reports how many rows a repository holds. Used for the detailed
// health report only.
type Counter interface {
	Count() (int64, error)
}

type HealthController struct {
	DB         *gorm.DB
	Redis      *redis.Client
	AI         config.AIConfig
	Valuators  Counter
	Valuations Counter
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, ai config.AIConfig, valuators, valuations Counter) *HealthController {
	return &HealthController{
		DB:         db,
		Redis:      rdb,
		AI:         ai,
		Valuators:  valuators,
		Valuations: valuations,
	}
}

func (c *HealthController) pingDB() error {
	if c.DB == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	if err := c.pingDB(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
	})
}

// Live godoc
// @Summary Liveness probe
// @Description Always succeeds while the process is serving requests.
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health/live [get]
func (c *HealthController) Live(ctx *gin.Context) {
	util.Success(ctx, gin.H{"status": "alive"})
}

// Ready godoc
// @Summary Readiness probe
// @Description Fails until the database accepts connections.
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health/ready [get]
func (c *HealthController) Ready(ctx *gin.Context) {
	if err := c.pingDB(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	util.Success(ctx, gin.H{"status": "ready"})
}

// Detailed godoc
// @Summary Detailed health report
// @Description Per-component status plus record counts. Redis being down
// @Description only disables caching, so it never fails the report.
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health/detailed [get]
func (c *HealthController) Detailed(ctx *gin.Context) {
	components := gin.H{}
	status := "ok"

	dbUp := c.pingDB() == nil
	if dbUp {
		components["database"] = "up"
	} else {
		components["database"] = "down"
		status = "degraded"
	}

	if c.Redis == nil {
		components["redis"] = "disabled"
	} else if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		components["redis"] = "down"
	} else {
		components["redis"] = "up"
	}

	report := gin.H{
		"status":           status,
		"components":       components,
		"apiKeyConfigured": c.AI.APIKey != "",
	}

	if dbUp {
		if valuators, err := c.Valuators.Count(); err == nil {
			report["valuators"] = valuators
		}
		if valuations, err := c.Valuations.Count(); err == nil {
			report["valuations"] = valuations
		}
	}

	util.Success(ctx, report)
}
