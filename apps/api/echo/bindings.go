package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

var pageParam = "page"

// PageRequest is the requested page of a list. Missing or non numeric values ask for the first page;
// out of range values are clamped by the pagination.
type PageRequest struct {
	Page int
}

func (pr *PageRequest) Bind(ctx echo.Context) {
	pr.Page = 1

	val := strings.TrimSpace(ctx.QueryParam(pageParam))
	if val == "" {
		return
	}
	if page, err := strconv.Atoi(val); err == nil {
		pr.Page = page
	}
}
