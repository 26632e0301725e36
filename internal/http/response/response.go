package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey 请求 ID 在 gin 上下文中的键
const RequestIDKey = "request_id"

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 创建分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

func Success(c *gin.Context, data interface{}) {
	SuccessWithMsg(c, "success", data)
}

func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: CodeOK,
		Msg:        msg,
		Data:       data,
	})
}

func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应，已知请求 ID 时一并放入 data
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithData(c, statusCode, msg, nil)
}

func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       attachRequestID(c, data),
	})
}

// attachRequestID 向 data 写入请求 ID，不覆盖已有值；非 map 数据嵌套到 "data" 下
func attachRequestID(c *gin.Context, data interface{}) interface{} {
	if c == nil {
		return data
	}
	requestID := c.GetString(RequestIDKey)
	if requestID == "" {
		return data
	}
	switch v := data.(type) {
	case nil:
		return gin.H{RequestIDKey: requestID}
	case gin.H:
		if _, ok := v[RequestIDKey]; !ok {
			v[RequestIDKey] = requestID
		}
		return v
	case map[string]interface{}:
		if _, ok := v[RequestIDKey]; !ok {
			v[RequestIDKey] = requestID
		}
		return v
	default:
		return gin.H{RequestIDKey: requestID, "data": data}
	}
}
