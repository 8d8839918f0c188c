package dto

// ── 排班表模块请求 ──

// ScheduleItemRequest 排班条目（working_day / shift 使用展示名）
type ScheduleItemRequest struct {
	User       string `json:"user"        binding:"required,uuid"`
	WorkingDay string `json:"working_day" binding:"required,working_day"`
	Shift      string `json:"shift"       binding:"required,shift"`
	StartTime  string `json:"start_time"  binding:"required,clock"`
	EndTime    string `json:"end_time"    binding:"required,clock"`
}

// CreateRosterRequest 创建排班表，可同时创建排班条目
type CreateRosterRequest struct {
	Title               string                `json:"title"                 binding:"required,max=256"`
	RosterUserSchedules []ScheduleItemRequest `json:"roster_user_schedules" binding:"required,dive"`
}

// CreateScheduleRequest 在已有排班表中创建单条排班条目
type CreateScheduleRequest struct {
	Roster string `json:"roster" binding:"required,uuid"`
	ScheduleItemRequest
}

// UpdateScheduleRequest 部分更新排班条目；user 变化时替换为新条目
type UpdateScheduleRequest struct {
	User       *string `json:"user"        binding:"omitempty,uuid"`
	WorkingDay *string `json:"working_day" binding:"omitempty,working_day"`
	Shift      *string `json:"shift"       binding:"omitempty,shift"`
	StartTime  *string `json:"start_time"  binding:"omitempty,clock"`
	EndTime    *string `json:"end_time"    binding:"omitempty,clock"`
}
