package model

import (
	"time"

	"gorm.io/gorm"
)

// LogFields 通用审计字段（排班相关业务模型嵌入）
// DateDeleted 为软删除标记，gorm 查询会自动追加 date_deleted IS NULL
type LogFields struct {
	CreatedByID *string        `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedByID *string        `gorm:"type:uuid"                          json:"updated_by,omitempty"`
	DateCreated time.Time      `gorm:"not null;autoCreateTime"            json:"date_created"`
	DateUpdated time.Time      `gorm:"not null;autoUpdateTime"            json:"date_updated"`
	DateDeleted gorm.DeletedAt `gorm:"index"                              json:"date_deleted"`
}

// Actor 将操作人 ID 转为可空外键，空串视为系统操作
func Actor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// StampCreate 写入创建人与更新人
func (l *LogFields) StampCreate(actorID string) {
	l.CreatedByID = Actor(actorID)
	l.UpdatedByID = Actor(actorID)
}
