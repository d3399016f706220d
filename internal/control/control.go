// Package control implements the RSU's embedded HTTP control surface
// liveness, and the add/remove/start-stop commands that mutate
// the Plugin Manager's roster.
package control

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/autocore-ai/RSU/internal/errors"
	"github.com/autocore-ai/RSU/internal/logger"
	"github.com/autocore-ai/RSU/internal/middleware"
	"github.com/autocore-ai/RSU/internal/pluginmgr"
)

// Router builds the gin engine for the control surface, wired to pm.
func Router(pm *pluginmgr.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(apperrors.Recovery())
	r.Use(apperrors.ErrorHandler())

	log := logger.Control()

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "RSU OK")
	})

	r.POST("/plugin", func(c *gin.Context) {
		var body struct {
			Name   string `json:"name" binding:"required"`
			Active bool   `json:"active"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apperrors.RespondError(c, apperrors.BadRequest("params are wrong, ex: {\"name\": \"traffic_light\", \"active\": true}"))
			return
		}

		var msg string
		var err error
		if body.Active {
			msg, err = pm.StartPlugin(body.Name)
		} else {
			msg, err = pm.StopPlugin(body.Name)
		}
		if err != nil {
			log.Warn().Err(err).Str("plugin", body.Name).Msg("plugin state change failed")
			apperrors.RespondError(c, apperrors.PluginLifecycle(err.Error(), err))
			return
		}
		apperrors.RespondOK(c, msg)
	})

	r.POST("/plugin/add", func(c *gin.Context) {
		var body struct {
			Name   string `json:"name" binding:"required"`
			Path   string `json:"path" binding:"required"`
			Active bool   `json:"active"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apperrors.RespondError(c, apperrors.BadRequest("params are wrong, ex: {\"name\": \"traffic_light\", \"path\": \"/home/traffic_light.so\", \"active\": true}"))
			return
		}

		msg, err := pm.AddPlugin(body.Name, body.Path, body.Active)
		if err != nil {
			log.Warn().Err(err).Str("plugin", body.Name).Msg("add_plugin failed")
			apperrors.RespondError(c, apperrors.PluginLifecycle(err.Error(), err))
			return
		}
		apperrors.RespondOK(c, msg)
	})

	r.POST("/plugin/remove", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apperrors.RespondError(c, apperrors.BadRequest("params are wrong, ex: {\"name\": \"traffic_light\"}"))
			return
		}

		msg, err := pm.RemovePlugin(body.Name)
		if err != nil {
			log.Warn().Err(err).Str("plugin", body.Name).Msg("remove_plugin failed")
			apperrors.RespondError(c, apperrors.PluginLifecycle(err.Error(), err))
			return
		}
		apperrors.RespondOK(c, msg)
	})

	return r
}

// Serve blocks serving the control surface on addr (host:port or :port).
func Serve(addr string, pm *pluginmgr.Manager) error {
	return Router(pm).Run(addr)
}
