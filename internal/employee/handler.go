package employee

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"HRM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: self は認証済み全員、hr は admin / hr ロールの group
func RegisterRoutes(self, hr gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /me/work-location
	self.GET("/me/work-location", h.GetOwnWorkLocation)

	// GET|PUT /employees/:employee_id/work-location
	hr.GET("/employees/:employee_id/work-location", h.GetWorkLocation)
	hr.PUT("/employees/:employee_id/work-location", h.UpdateWorkLocation)
}

// ---------- handlers ----------

// GetOwnWorkLocation godoc
// @Summary     自分の勤務地ポリシー
// @Tags        employees
// @Produce     json
// @Success     200 {object} WorkLocationResponse
// @Security    BearerAuth
// @Router      /me/work-location [get]
func (h *Handler) GetOwnWorkLocation(c *gin.Context) {
	res, err := h.svc.GetWorkLocation(c.Request.Context(), auth.EmployeeID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetWorkLocation godoc
// @Summary     従業員の勤務地ポリシー（人事向け）
// @Tags        employees
// @Produce     json
// @Param       employee_id path string true "従業員ID"
// @Success     200 {object} WorkLocationResponse
// @Security    BearerAuth
// @Router      /employees/{employee_id}/work-location [get]
func (h *Handler) GetWorkLocation(c *gin.Context) {
	res, err := h.svc.GetWorkLocation(c.Request.Context(), c.Param("employee_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateWorkLocation godoc
// @Summary     勤務地ポリシーの変更（人事向け）
// @Tags        employees
// @Accept      json
// @Produce     json
// @Param       employee_id path string true "従業員ID"
// @Param       body body UpdateWorkLocationRequest true "勤務地"
// @Success     200 {object} WorkLocationResponse
// @Security    BearerAuth
// @Router      /employees/{employee_id}/work-location [put]
func (h *Handler) UpdateWorkLocation(c *gin.Context) {
	var req UpdateWorkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.UpdateWorkLocation(c.Request.Context(), c.Param("employee_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorBody(api.Code, api.Message)
	}
	return errorBody(CodeInternal, "internal server error")
}
