package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RosterHandler 排班表模块 HTTP 处理器
type RosterHandler struct {
	rosterSvc service.RosterService
	exportSvc service.ExportService
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(rosterSvc service.RosterService, exportSvc service.ExportService) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc, exportSvc: exportSvc}
}

// Create 创建排班表（可同时创建排班条目）
// POST /api/v1/rosters
func (h *RosterHandler) Create(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, 13001, err)
		return
	}

	roster, err := h.rosterSvc.Create(c.Request.Context(), &req, managerID)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}

	response.Created(c, roster)
}

// List 当前管理者负责的排班表
// GET /api/v1/rosters/list
func (h *RosterHandler) List(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rosters, err := h.rosterSvc.ListMine(c.Request.Context(), managerID)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rosters})
}

// Export 导出排班表
// GET /api/v1/rosters/:id/export
func (h *RosterHandler) Export(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	rosterID, ok := pathID(c, "id")
	if !ok {
		h.handleRosterError(c, service.ErrRosterNotFound)
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), rosterID, managerID)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *RosterHandler) handleRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRosterNotFound):
		response.NotFound(c, 13101, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		if businessError(c, 13102, err) {
			return
		}
		response.InternalError(c)
	}
}
