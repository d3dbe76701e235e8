package server

import "github.com/gin-gonic/gin"

// APIResponse is the JSON envelope for every API reply.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a success envelope.
func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Fail writes an error envelope. data may carry details such as a
// validation report.
func Fail(c *gin.Context, statusCode int, err error, message string, data any) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
		Data:    data,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
