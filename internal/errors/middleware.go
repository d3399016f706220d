// Package errors provides standardized error handling for the RSU supervisor.
//
// This file implements error handling middleware for the control HTTP surface.
//
// Every control-surface response uses the {status, message} envelope and
// HTTP 200 regardless of success or failure. The status field in the body
// (1 or -1) is what callers branch on.
package errors

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs AppErrors and generic errors raised during a control
// request and replies with the {status, message} envelope, unless the
// handler has already written a response (as RespondError does).
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		if appErr, ok := err.Err.(*AppError); ok {
			if appErr.StatusCode >= 500 {
				log.Printf("[ERROR] %s - %s (Details: %s)", appErr.Code, appErr.Message, appErr.Details)
			} else {
				log.Printf("[WARN] %s - %s", appErr.Code, appErr.Message)
			}
			if !c.Writer.Written() {
				c.JSON(http.StatusOK, appErr.ToControlResponse())
			}
			return
		}

		log.Printf("[ERROR] Unhandled error: %v", err.Err)
		if !c.Writer.Written() {
			c.JSON(http.StatusOK, ControlResponse{Status: -1, Message: "an unexpected error occurred"})
		}
	}
}

// Recovery recovers from panics in a control handler and reports them as a
// failed control response instead of tearing down the listener.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] Recovered from panic: %v", r)
				c.JSON(http.StatusOK, ControlResponse{Status: -1, Message: "an unexpected error occurred"})
				c.Abort()
			}
		}()

		c.Next()
	}
}

// RespondOK writes a successful control response.
func RespondOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, ControlResponse{Status: 1, Message: message})
}

// RespondError writes a failed control response and records the error on
// the gin context for ErrorHandler to log.
func RespondError(c *gin.Context, err *AppError) {
	c.Error(err)
	c.JSON(http.StatusOK, err.ToControlResponse())
}
