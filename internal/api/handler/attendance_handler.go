package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	maxUpload     int64
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, maxUpload int64) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, maxUpload: maxUpload}
}

// CheckIn 考勤打卡（multipart: roster_user_schedule + image）
// POST /api/v1/attendance
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, 15001, err)
		return
	}

	image, err := readUpload(req.Image, h.maxUpload)
	if err != nil {
		response.BadRequest(c, 15002, "Unable to read the uploaded file.")
		return
	}

	attendance, err := h.attendanceSvc.CheckIn(c.Request.Context(), req.RosterUserSchedule, image, userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, attendance)
}

// ListMine 本人考勤记录
// GET /api/v1/attendance/list
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.attendanceSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15101, err.Error())
	default:
		if businessError(c, 15102, err) {
			return
		}
		response.InternalError(c)
	}
}
