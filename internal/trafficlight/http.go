package trafficlight

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/autocore-ai/RSU/internal/errors"
)

// Router builds the traffic-light plugin's own HTTP surface: liveness and
// the /rule_change endpoint.
func Router(e *Engine) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	r.POST("/rule_change", func(c *gin.Context) {
		var body struct {
			LgtID  string `json:"lgt_id" binding:"required"`
			Color  int    `json:"color"`
			Remain int64  `json:"remain"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apperrors.RespondError(c, apperrors.BadRequest("params are wrong, ex: {\"lgt_id\": \"light_1\", \"color\": 2, \"remain\": 4}"))
			return
		}

		e.RuleChange(body.LgtID, Color(body.Color), body.Remain)
		apperrors.RespondOK(c, "rule change applied")
	})

	return r
}
