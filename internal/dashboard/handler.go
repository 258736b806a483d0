package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdash/internal/alerting"
	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	"salesdash/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.WarnwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
}

func (h *BaseHandler) respondRecord(c *gin.Context, fn func(ctx context.Context, id string) (sales.SaleRecord, error)) {
	rec, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group(constants.APIPrefix)
	{
		v1.GET("/fields", h.ListFields)

		rules := v1.Group("/rules")
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.GET("/:id", h.GetRule)
			rules.PUT("/:id", h.UpdateRule)
			rules.DELETE("/:id", h.DeleteRule)
			rules.PUT("/:id/active", h.SetRuleActive)
			rules.POST("/:id/move", h.MoveRule)
		}

		editor := v1.Group("/editor")
		{
			editor.GET("", h.GetEditState)
			editor.POST("/save", h.SaveRule)
			editor.POST("/:id", h.StartEdit)
			editor.DELETE("", h.CancelEdit)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.GET("", h.ListAlerts)
			alerts.GET("/history", h.ListHistory)
			alerts.DELETE("/:id", h.DismissAlert)
			alerts.POST("/dismiss", h.DismissSelected)
			alerts.POST("/read", h.MarkAllRead)
			alerts.POST("/:id/select", h.ToggleAlertSelection)
			alerts.POST("/groups/:ruleId/select", h.ToggleGroupSelection)
		}

		table := v1.Group("/table")
		{
			table.GET("", h.GetTable)
			table.PUT("/view", h.UpdateView)
			table.POST("/sort", h.ToggleSort)
			table.POST("/columns/move", h.MoveColumn)
			table.POST("/select", h.SelectAllRows)
			table.POST("/hide", h.HideSelected)
			table.POST("/mark", h.MarkSelected)
		}

		records := v1.Group("/records")
		{
			records.GET("/:id", h.GetRecord)
			records.PUT("/:id/notes", h.UpdateNote)
			records.POST("/:id/hidden", h.ToggleHidden)
			records.POST("/:id/highlight", h.ToggleHighlight)
			records.POST("/:id/mark", h.ToggleMark)
			records.POST("/:id/select", h.ToggleRowSelection)
		}

		v1.GET("/overview", h.GetOverview)
		v1.POST("/summary", h.GetSummary)
		v1.POST("/reload", h.Reload)
	}
}

// ListFields godoc
// @Summary      List alertable fields
// @Description  Field registry with the operators each field accepts
// @Tags         rules
// @Produce      json
// @Success      200  {array}   FieldInfo
// @Router       /fields [get]
func (h *Handler) ListFields(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Fields(c.Request.Context()))
}

// ListRules godoc
// @Summary      List alert rules
// @Description  Rules in display order
// @Tags         rules
// @Produce      json
// @Success      200  {array}   alerting.Rule
// @Router       /rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.ListRules(c.Request.Context()))
}

// CreateRule godoc
// @Summary      Create an alert rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        rule  body      alerting.RuleDraft  true  "Rule data"
// @Success      201   {object}  alerting.Rule
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /rules [post]
func (h *Handler) CreateRule(c *gin.Context) {
	var req alerting.RuleDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := h.Service.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// GetRule godoc
// @Summary      Get an alert rule
// @Tags         rules
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  alerting.Rule
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /rules/{id} [get]
func (h *Handler) GetRule(c *gin.Context) {
	rule, err := h.Service.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpdateRule godoc
// @Summary      Update an alert rule
// @Description  Only the fields present in the body change
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Rule ID"
// @Param        rule  body      alerting.RulePatch  true  "Fields to change"
// @Success      200   {object}  alerting.Rule
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /rules/{id} [put]
func (h *Handler) UpdateRule(c *gin.Context) {
	var req alerting.RulePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := h.Service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary      Delete an alert rule
// @Tags         rules
// @Param        id   path      string  true  "Rule ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /rules/{id} [delete]
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.Service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRuleActive godoc
// @Summary      Activate or deactivate an alert rule
// @Tags         rules
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Rule ID"
// @Param        body  body      SetActiveRequest  true  "Active flag"
// @Success      200   {object}  alerting.Rule
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /rules/{id}/active [put]
func (h *Handler) SetRuleActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := h.Service.SetRuleActive(c.Request.Context(), c.Param("id"), req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// MoveRule godoc
// @Summary      Move an alert rule one position
// @Description  Moving past either end is a no-op
// @Tags         rules
// @Accept       json
// @Param        id    path      string           true  "Rule ID"
// @Param        body  body      MoveRuleRequest  true  "up or down"
// @Success      204   "No Content"
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /rules/{id}/move [post]
func (h *Handler) MoveRule(c *gin.Context) {
	var req MoveRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.Service.MoveRule(c.Request.Context(), c.Param("id"), req.Direction); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEditState godoc
// @Summary      Current rule editor state
// @Tags         editor
// @Produce      json
// @Success      200  {object}  EditState
// @Router       /editor [get]
func (h *Handler) GetEditState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.EditState(c.Request.Context()))
}

// StartEdit godoc
// @Summary      Start editing a rule
// @Tags         editor
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  EditState
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /editor/{id} [post]
func (h *Handler) StartEdit(c *gin.Context) {
	state, err := h.Service.StartEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CancelEdit godoc
// @Summary      Leave edit mode
// @Tags         editor
// @Success      204  "No Content"
// @Router       /editor [delete]
func (h *Handler) CancelEdit(c *gin.Context) {
	h.Service.CancelEdit(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// SaveRule godoc
// @Summary      Save the editor form
// @Description  Updates the rule under edit, or creates a rule when not editing
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        rule  body      alerting.RuleDraft  true  "Form contents"
// @Success      200   {object}  alerting.Rule
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /editor/save [post]
func (h *Handler) SaveRule(c *gin.Context) {
	var req alerting.RuleDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rule, err := h.Service.SaveRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListAlerts godoc
// @Summary      Current alerts
// @Description  Recomputes alerts over the filtered records, grouped by rule
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  AlertsView
// @Router       /alerts [get]
func (h *Handler) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Alerts(c.Request.Context()))
}

// ListHistory godoc
// @Summary      Dismissed alert history
// @Tags         alerts
// @Produce      json
// @Success      200  {array}   alerting.Alert
// @Router       /alerts/history [get]
func (h *Handler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.History(c.Request.Context()))
}

// DismissAlert godoc
// @Summary      Dismiss one alert
// @Tags         alerts
// @Param        id   path      string  true  "Alert ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /alerts/{id} [delete]
func (h *Handler) DismissAlert(c *gin.Context) {
	if err := h.Service.DismissAlert(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DismissSelected godoc
// @Summary      Dismiss the selected alerts
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  DismissResponse
// @Router       /alerts/dismiss [post]
func (h *Handler) DismissSelected(c *gin.Context) {
	c.JSON(http.StatusOK, DismissResponse{Dismissed: h.Service.DismissSelected(c.Request.Context())})
}

// MarkAllRead godoc
// @Summary      Mark every current alert read
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  CountResponse
// @Router       /alerts/read [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	c.JSON(http.StatusOK, CountResponse{Count: h.Service.MarkAllRead(c.Request.Context())})
}

// ToggleAlertSelection godoc
// @Summary      Toggle one alert in the selection
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  SelectionResponse
// @Router       /alerts/{id}/select [post]
func (h *Handler) ToggleAlertSelection(c *gin.Context) {
	c.JSON(http.StatusOK, SelectionResponse{Selected: h.Service.ToggleAlertSelection(c.Request.Context(), c.Param("id"))})
}

// ToggleGroupSelection godoc
// @Summary      Select or clear a whole alert group
// @Tags         alerts
// @Produce      json
// @Param        ruleId  path      string  true  "Rule ID"
// @Success      200     {object}  SelectionResponse
// @Router       /alerts/groups/{ruleId}/select [post]
func (h *Handler) ToggleGroupSelection(c *gin.Context) {
	c.JSON(http.StatusOK, SelectionResponse{Selected: h.Service.ToggleGroupSelection(c.Request.Context(), c.Param("ruleId"))})
}

// GetTable godoc
// @Summary      Sales table
// @Tags         table
// @Produce      json
// @Success      200  {object}  TableView
// @Router       /table [get]
func (h *Handler) GetTable(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Table(c.Request.Context()))
}

// UpdateView godoc
// @Summary      Set filters and search
// @Description  Omitted parts of the body keep their current value
// @Tags         table
// @Accept       json
// @Produce      json
// @Param        view  body      ViewRequest  true  "Filters and search"
// @Success      200   {object}  TableView
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /table/view [put]
func (h *Handler) UpdateView(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Service.UpdateView(c.Request.Context(), req))
}

// ToggleSort godoc
// @Summary      Toggle the sort column
// @Tags         table
// @Accept       json
// @Produce      json
// @Param        sort  body      SortRequest  true  "Column key"
// @Success      200   {object}  TableView
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /table/sort [post]
func (h *Handler) ToggleSort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	view, err := h.Service.ToggleSort(c.Request.Context(), req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MoveColumn godoc
// @Summary      Move a table column
// @Tags         table
// @Accept       json
// @Produce      json
// @Param        move  body      MoveColumnRequest  true  "Source and target positions"
// @Success      200   {array}   tableview.Column
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /table/columns/move [post]
func (h *Handler) MoveColumn(c *gin.Context) {
	var req MoveColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cols, err := h.Service.MoveColumn(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cols)
}

// SelectAllRows godoc
// @Summary      Select all rows or clear the selection
// @Description  An empty id list targets the rows currently shown
// @Tags         table
// @Accept       json
// @Produce      json
// @Param        ids  body      IDsRequest  false  "Row ids"
// @Success      200  {object}  SelectionResponse
// @Router       /table/select [post]
func (h *Handler) SelectAllRows(c *gin.Context) {
	var req IDsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, SelectionResponse{Selected: h.Service.SelectAllRows(c.Request.Context(), req.IDs)})
}

// HideSelected godoc
// @Summary      Hide the selected rows
// @Tags         table
// @Produce      json
// @Success      200  {object}  CountResponse
// @Router       /table/hide [post]
func (h *Handler) HideSelected(c *gin.Context) {
	c.JSON(http.StatusOK, CountResponse{Count: h.Service.HideSelected(c.Request.Context())})
}

// MarkSelected godoc
// @Summary      Mark the selected rows
// @Tags         table
// @Produce      json
// @Success      200  {object}  CountResponse
// @Router       /table/mark [post]
func (h *Handler) MarkSelected(c *gin.Context) {
	c.JSON(http.StatusOK, CountResponse{Count: h.Service.MarkSelected(c.Request.Context())})
}

// GetRecord godoc
// @Summary      Get a sale record
// @Tags         records
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  sales.SaleRecord
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /records/{id} [get]
func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.Service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateNote godoc
// @Summary      Replace a record's notes
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Sale ID"
// @Param        note  body      NoteRequest  true  "Notes"
// @Success      200   {object}  sales.SaleRecord
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /records/{id}/notes [put]
func (h *Handler) UpdateNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rec, err := h.Service.UpdateNote(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ToggleHidden godoc
// @Summary      Toggle a record's hidden flag
// @Tags         records
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  sales.SaleRecord
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /records/{id}/hidden [post]
func (h *Handler) ToggleHidden(c *gin.Context) {
	h.respondRecord(c, h.Service.ToggleHidden)
}

// ToggleHighlight godoc
// @Summary      Toggle a record's highlight flag
// @Tags         records
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  sales.SaleRecord
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /records/{id}/highlight [post]
func (h *Handler) ToggleHighlight(c *gin.Context) {
	h.respondRecord(c, h.Service.ToggleHighlight)
}

// ToggleMark godoc
// @Summary      Toggle a record's mark flag
// @Tags         records
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  sales.SaleRecord
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /records/{id}/mark [post]
func (h *Handler) ToggleMark(c *gin.Context) {
	h.respondRecord(c, h.Service.ToggleMark)
}

// ToggleRowSelection godoc
// @Summary      Toggle one row in the selection
// @Tags         records
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  SelectionResponse
// @Router       /records/{id}/select [post]
func (h *Handler) ToggleRowSelection(c *gin.Context) {
	c.JSON(http.StatusOK, SelectionResponse{Selected: h.Service.ToggleRowSelection(c.Request.Context(), c.Param("id"))})
}

// GetOverview godoc
// @Summary      KPIs and chart series over the filtered records
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  Overview
// @Router       /overview [get]
func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Overview(c.Request.Context()))
}

// GetSummary godoc
// @Summary      AI summary of the filtered records
// @Description  Always answers 200; failures come back as user-facing text
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  summary.Result
// @Router       /summary [post]
func (h *Handler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Summary(c.Request.Context()))
}

// Reload godoc
// @Summary      Reload sales records from the data source
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  ReloadResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /reload [post]
func (h *Handler) Reload(c *gin.Context) {
	res, err := h.Service.Reload(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
