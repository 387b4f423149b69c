package api

import (
	_ "embed"
	"net/http"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

//go:embed openapi.json
var openAPIDoc []byte

const openAPIPath = "/swagger/apartados.json"

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(cfg *config.Config, logger *zap.Logger, apartados *ApartadoHandler, productos *ProductoHandler) *gin.Engine {
	engine := gin.New()
	setupMiddleware(engine, cfg.HTTP, logger)
	setupRoutes(engine, cfg, logger, apartados, productos)
	return engine
}

func setupMiddleware(engine *gin.Engine, cfg config.HTTPConfig, logger *zap.Logger) {
	// Recovery first so it sees panics from the rest of the chain.
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error interno del servidor"})
	}))
	engine.Use(NewCORS(cfg.CORSOrigins))
	engine.Use(RequestLogger(logger))
}

func setupRoutes(engine *gin.Engine, cfg *config.Config, logger *zap.Logger, apartados *ApartadoHandler, productos *ProductoHandler) {
	base := cfg.HTTP.BasePath

	addRoutes(&engine.RouterGroup, []route{
		{Method: http.MethodGet, Path: "/", Handler: index(base)},
		{Method: http.MethodGet, Path: "/health", Handler: healthCheck},
	})

	if cfg.HTTP.Docs {
		engine.GET(openAPIPath, func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", openAPIDoc)
		})
		engine.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}

	var staff []gin.HandlerFunc
	if cfg.Auth.Enabled() {
		staff = append(staff, StaffAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger))
	}

	apiGroup := engine.Group(base)
	{
		apartados.Register(apiGroup.Group("/apartados"), staff...)
		productos.Register(apiGroup.Group("/productos"))
	}
}

func index(base string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"mensaje": "👑 API Modas Eclipse funcionando",
			"endpoints": gin.H{
				"crear":    "POST " + base + "/apartados",
				"listar":   "GET " + base + "/apartados",
				"porEmail": "GET " + base + "/apartados/:email",
				"recoger":  "POST " + base + "/apartados/:id/recoger",
				"cancelar": "DELETE " + base + "/apartados/:id",
			},
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		g.Handle(r.Method, r.Path, r.Handler)
	}
}
