package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

// ScheduleHandler 排班条目 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	exportSvc   service.ExportService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, exportSvc service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, exportSvc: exportSvc}
}

// Create 在已有排班表中创建排班条目
// POST /api/v1/rosters/users/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, 14001, err)
		return
	}

	item, err := h.scheduleSvc.Create(c.Request.Context(), &req, managerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, item)
}

// ListMine 员工本人的排班
// GET /api/v1/rosters/users/schedules/list
func (h *ScheduleHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.scheduleSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// Calendar 员工本人的排班导出为 iCalendar（可直接订阅）
// GET /api/v1/rosters/users/schedules/calendar
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.exportSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedules.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// Update 更新排班条目；user 变化时替换为新条目
// PUT /api/v1/rosters/users/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		h.handleScheduleError(c, service.ErrScheduleNotFound)
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, 14001, err)
		return
	}

	item, err := h.scheduleSvc.Update(c.Request.Context(), id, &req, managerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, item)
}

// Delete 软删除排班条目
// DELETE /api/v1/rosters/users/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		h.handleScheduleError(c, service.ErrScheduleNotFound)
		return
	}

	msg, err := h.scheduleSvc.Delete(c.Request.Context(), id, managerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 14101, err.Error())
	case errors.Is(err, service.ErrRosterManagerNotFound):
		response.NotFound(c, 14102, err.Error())
	default:
		if businessError(c, 14103, err) {
			return
		}
		response.InternalError(c)
	}
}
