package api

import (
	"database/sql"
	"fmt"

	"formrank/internal/app"
	"formrank/internal/logger"
	"formrank/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type ApiHandler struct {
	Db             *sql.DB
	IngestHandler  app.IngestHandler
	TrainerService service.TrainerService
	ScorerService  service.ScorerService
}

func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to formrank"})
	})
	router.POST("/ingest", m.ingest)
	router.POST("/train", m.train)
	router.POST("/score", m.score)
	router.GET("/picks.csv", m.picksCsv)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.Router().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	logger.Error(err)
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}
