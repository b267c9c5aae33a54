package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Release 发布模型
type Release struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string    `gorm:"size:255;not null" json:"name"`
	Date           time.Time `gorm:"not null;index" json:"date"` // 计划发布日期
	AdditionalInfo *string   `gorm:"type:text" json:"additional_info"`

	StepsCompleted StepFlags `gorm:"type:json" json:"steps_completed"` // 与检查项按下标一一对应

	// Revision 检查项每次变更递增，用于切换检查项时的比较交换
	Revision int64 `gorm:"not null;default:0" json:"-"`
}

// TableName 指定表名
func (Release) TableName() string {
	return "releases"
}

// BeforeCreate 未指定ID时生成UUID
func (r *Release) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// StepFlags 检查项完成标记，以JSON数组存储
//
// 数据库中为 NULL、非JSON或非数组时扫描结果为 nil，不返回错误。
type StepFlags []bool

// Scan 实现sql.Scanner接口
func (s *StepFlags) Scan(value interface{}) error {
	*s = nil

	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}

	var flags []bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil
	}
	if flags == nil {
		return nil
	}
	*s = flags
	return nil
}

// Value 实现driver.Valuer接口
func (s StepFlags) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal([]bool(s))
	if err != nil {
		return nil, fmt.Errorf("marshal step flags: %w", err)
	}
	return string(bytes), nil
}

// Padded 返回长度至少为 n 的副本，缺失项补 false；无效列表得到 n 个 false
func (s StepFlags) Padded(n int) StepFlags {
	size := len(s)
	if size < n {
		size = n
	}
	out := make(StepFlags, size)
	copy(out, s)
	return out
}
