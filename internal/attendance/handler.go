package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"HRM-backend/internal/geo"
	"HRM-backend/internal/platform/auth"
	"HRM-backend/internal/platform/idempotency"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 本人の打刻と状態取得。idem は POST のみに掛ける（nil 可）
func RegisterRoutes(r gin.IRoutes, svc *Service, idem gin.HandlerFunc) {
	h := &Handler{svc: svc}

	// POST /attendance
	if idem != nil {
		r.POST("/attendance", idem, h.Perform)
	} else {
		r.POST("/attendance", h.Perform)
	}
	// GET /attendance?history_limit=
	r.GET("/attendance", h.Status)
}

// RegisterHRRoutes: 人事向けの一覧・集計（admin / hr ロールの group に登録する）
func RegisterHRRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/attendance/days", h.List)
	r.GET("/attendance/stats", h.Stats)
}

// ---------- handlers ----------

// Perform godoc
// @Summary     打刻（出勤・退勤・休憩・会議）
// @Tags        attendance
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key header string false "再送判定キー"
// @Param       body body ActionRequest true "action と端末の座標"
// @Success     200 {object} ActionResponse
// @Failure     400,403,409,422 {object} errorDTO
// @Security    BearerAuth
// @Router      /attendance [post]
func (h *Handler) Perform(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	res, err := h.svc.Perform(c.Request.Context(), auth.EmployeeID(c), action, req.Location.position())
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			// 再送で取り直せるよう保存しない
			idempotency.SkipStore(c)
		}
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status godoc
// @Summary     本日の状態と履歴
// @Tags        attendance
// @Produce     json
// @Param       history_limit query int false "履歴件数 (1-366)"
// @Success     200 {object} StatusResponse
// @Security    BearerAuth
// @Router      /attendance [get]
func (h *Handler) Status(c *gin.Context) {
	limit := 0
	if v := c.Query("history_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "history_limit must be a positive integer"))
			return
		}
		limit = n
	}

	res, err := h.svc.Status(c.Request.Context(), auth.EmployeeID(c), limit)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// List godoc
// @Summary     勤怠一覧（人事向け）
// @Tags        attendance
// @Produce     json
// @Param       employee_id query string false "従業員ID"
// @Param       from query string false "YYYY-MM-DD"
// @Param       to query string false "YYYY-MM-DD"
// @Param       limit query int false "件数"
// @Param       offset query int false "オフセット"
// @Param       order query string false "work_date_desc | work_date_asc"
// @Param       format query string false "json | csv（CP932）"
// @Produce     text/csv
// @Success     200 {object} ListResponse
// @Security    BearerAuth
// @Router      /attendance/days [get]
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Sort:   c.DefaultQuery("order", DefaultSort),
	}
	format := c.DefaultQuery("format", FormatJSON)
	if format != FormatJSON && format != FormatCSV {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "format must be json or csv"))
		return
	}
	if v := c.Query("employee_id"); v != "" {
		q.EmployeeID = &v
	}
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}

	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	if format == FormatCSV {
		body, err := writeCSVcp932(res.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, "csv export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="attendance_days.csv"`)
		c.Header("X-Total-Count", strconv.FormatInt(res.Total, 10))
		c.Data(http.StatusOK, "text/csv; charset=Shift_JIS", body)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Stats godoc
// @Summary     期間集計（人事向け）
// @Tags        attendance
// @Produce     json
// @Param       from query string true "YYYY-MM-DD"
// @Param       to query string true "YYYY-MM-DD"
// @Param       limit query int false "上位N件"
// @Success     200 {array} StatsRow
// @Security    BearerAuth
// @Router      /attendance/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	req := StatsRequest{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: parseIntDefault(c.Query("limit"), DefaultStatsLimit),
	}
	res, err := h.svc.Stats(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

// position: 緯度経度のどちらかが欠けていれば位置情報なしとして扱う
func (l *LocationDTO) position() *geo.Position {
	if l == nil || l.Latitude == nil || l.Longitude == nil {
		return nil
	}
	return &geo.Position{Latitude: *l.Latitude, Longitude: *l.Longitude, Accuracy: l.Accuracy}
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code           `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
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
		e := errorBody(api.Code, api.Message)
		e.Error.Details = api.Details
		return e
	}
	// 内部エラーの詳細は返さない
	return errorBody(CodeInternal, "internal server error")
}
