package model

import (
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// 排班相关校验提示
const (
	MsgStartBeforeEnd  = "Start time must be before than end time."
	MsgManagerRequired = "User should have manager role to create roster manager."
	MsgStaffRequired   = "User should have staff member role to create roster user schedule."
	MsgAllUsersStaff   = "All users must be staff members."
)

// Roster 排班表 — 对应 rosters
type Roster struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title    string `gorm:"type:varchar(256);not null"                     json:"title" validate:"required,max=256"`
	IsActive bool   `gorm:"not null;default:false"                         json:"is_active"`
	LogFields

	// 关联
	Managers  []RosterManager      `gorm:"foreignKey:RosterID" json:"managers,omitempty"               validate:"-"`
	Schedules []RosterUserSchedule `gorm:"foreignKey:RosterID" json:"roster_user_schedules,omitempty" validate:"-"`
}

func (Roster) TableName() string { return "rosters" }

// RosterManager 排班表管理者 — 对应 roster_managers
// 创建时要求 manager 持有 MANAGER 角色，之后角色被撤销不会回溯失效
type RosterManager struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RosterID  string `gorm:"type:uuid;not null"                             json:"roster_id"  validate:"required"`
	ManagerID string `gorm:"type:uuid;not null"                             json:"manager_id" validate:"required"`
	LogFields

	// 关联
	Roster  *Roster `gorm:"foreignKey:RosterID;references:ID"  json:"roster,omitempty"  validate:"-"`
	Manager *User   `gorm:"foreignKey:ManagerID;references:ID" json:"manager,omitempty" validate:"-"`
}

func (RosterManager) TableName() string { return "roster_managers" }

// RosterUserSchedule 排班条目 — 对应 roster_user_schedules
// (roster_id, user_id, working_day, shift) 在未删除行中唯一（部分唯一索引）
type RosterUserSchedule struct {
	ID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RosterID   string     `gorm:"type:uuid;not null"                             json:"roster_id"   validate:"required"`
	UserID     string     `gorm:"type:uuid;not null"                             json:"user_id"     validate:"required"`
	WorkingDay WorkingDay `gorm:"type:smallint;not null"                         json:"working_day" validate:"working_day"`
	Shift      Shift      `gorm:"type:smallint;not null"                         json:"shift"       validate:"shift"`
	StartTime  Clock      `gorm:"type:time;not null"                             json:"start_time"  validate:"clock_value"`
	EndTime    Clock      `gorm:"type:time;not null"                             json:"end_time"    validate:"clock_value"`
	LogFields

	// 关联
	Roster *Roster `gorm:"foreignKey:RosterID;references:ID" json:"roster,omitempty" validate:"-"`
	User   *User   `gorm:"foreignKey:UserID;references:ID"   json:"user,omitempty"   validate:"-"`
}

func (RosterUserSchedule) TableName() string { return "roster_user_schedules" }

// Clean 跨字段校验：开始时间必须早于结束时间
func (s *RosterUserSchedule) Clean() error {
	if s.EndTime <= s.StartTime {
		return pkgerrors.NewValidation(MsgStartBeforeEnd)
	}
	return nil
}

// ── 工作日 ──

// WorkingDay 工作日编码 1=Monday … 7=Sunday
type WorkingDay int16

const (
	Monday WorkingDay = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var workingDayLabels = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WorkingDays 按顺序返回全部工作日
func WorkingDays() []WorkingDay {
	return []WorkingDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid 是否为已定义工作日
func (d WorkingDay) Valid() bool { return d >= Monday && d <= Sunday }

// String 展示名
func (d WorkingDay) String() string {
	if !d.Valid() {
		return ""
	}
	return workingDayLabels[d]
}

// ParseWorkingDay 由展示名解析（精确匹配）
func ParseWorkingDay(label string) (WorkingDay, bool) {
	for i := Monday; i <= Sunday; i++ {
		if workingDayLabels[i] == label {
			return i, true
		}
	}
	return 0, false
}

// ── 班次 ──

// Shift 班次编码 1=Morning Shift 2=Evening Shift
type Shift int16

const (
	MorningShift Shift = 1
	EveningShift Shift = 2
)

// Valid 是否为已定义班次
func (s Shift) Valid() bool { return s == MorningShift || s == EveningShift }

// String 展示名
func (s Shift) String() string {
	switch s {
	case MorningShift:
		return "Morning Shift"
	case EveningShift:
		return "Evening Shift"
	}
	return ""
}

// ParseShift 由展示名解析（精确匹配）
func ParseShift(label string) (Shift, bool) {
	for _, s := range []Shift{MorningShift, EveningShift} {
		if s.String() == label {
			return s, true
		}
	}
	return 0, false
}
