package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response envelopes. Success wraps data, failures carry a stable code and
// a human message; detail is optional and never holds upstream internals.

type dataEnvelope struct {
	Code string      `json:"code"`
	Data interface{} `json:"data,omitempty"`
}

type failEnvelope struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

type pagedEnvelope struct {
	Code     string      `json:"code"`
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, dataEnvelope{Code: "OK", Data: data})
}

func Fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, failEnvelope{Code: code, Message: message, Detail: detail})
}

func Paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedEnvelope{Code: "OK", Items: items, Total: total, Page: page, PageSize: pageSize})
}
