package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The response envelope is always JSON:
//
//	success:  {"data": ...}
//	list:     {"data": [...], "length": n}
//	error:    {"err": "...", "_debug": ...}   (_debug optional)
//	conflict: {"data": <existing>, "err": "..."}
type Envelope struct {
	Data   interface{} `json:"data,omitempty"`
	Length *int        `json:"length,omitempty"`
	Err    string      `json:"err,omitempty"`
	Debug  interface{} `json:"_debug,omitempty"`
}

// Data writes a 200 success envelope.
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// List writes a 200 envelope carrying a sequence and its length.
func List(c *gin.Context, data interface{}, length int) {
	c.JSON(http.StatusOK, Envelope{Data: data, Length: &length})
}

// Err writes an error envelope. debug is omitted when nil.
func Err(c *gin.Context, statusCode int, msg string, debug interface{}) {
	c.JSON(statusCode, Envelope{Err: msg, Debug: debug})
}

// Conflict writes a 409 envelope carrying the record that already holds
// the contested key.
func Conflict(c *gin.Context, existing interface{}, msg string) {
	c.JSON(http.StatusConflict, Envelope{Data: existing, Err: msg})
}
