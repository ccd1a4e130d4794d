package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProblemResponse 机器可读的错误响应
type ProblemResponse struct {
	Status int      `json:"status"`
	Title  string   `json:"title"`
	Errors []string `json:"errors,omitempty"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// OK 无响应体的成功响应 (200)
func OK(c *gin.Context) {
	c.Status(http.StatusOK)
}

// BadRequest 400 错误响应，携带校验失败项列表
func BadRequest(c *gin.Context, title string, errs []string) {
	c.JSON(http.StatusBadRequest, ProblemResponse{
		Status: http.StatusBadRequest,
		Title:  title,
		Errors: errs,
	})
}

// NotFound 404 错误响应
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ProblemResponse{
		Status: http.StatusNotFound,
		Title:  "Not Found",
	})
}

// Error 兜底错误响应 (500)
// 不泄露内部错误细节，细节只进日志
func Error(c *gin.Context, err error) {
	log.Printf("request failed: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, ProblemResponse{
		Status: http.StatusInternalServerError,
		Title:  "An error occurred while processing your request",
	})
}
