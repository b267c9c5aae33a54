package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bingooyong/release-tracker/internal/checklist"
	"github.com/bingooyong/release-tracker/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrNoFieldsToUpdate 更新请求中没有任何可更新字段
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	// ErrConcurrentModification 切换检查项时多次比较交换均失败
	ErrConcurrentModification = errors.New("release modified concurrently")
)

// toggleAttempts 切换检查项的最大比较交换次数
const toggleAttempts = 5

// CreateReleaseInput 创建发布参数，检查项状态由仓储初始化
type CreateReleaseInput struct {
	Name           string
	Date           time.Time
	AdditionalInfo *string
}

// ReleaseUpdate 部分更新参数，仅 Set 为 true 的字段会被写入
type ReleaseUpdate struct {
	Name              string
	NameSet           bool
	Date              time.Time
	DateSet           bool
	AdditionalInfo    *string // nil 表示清空
	AdditionalInfoSet bool
}

// Empty 是否没有任何字段需要更新
func (u ReleaseUpdate) Empty() bool {
	return !u.NameSet && !u.DateSet && !u.AdditionalInfoSet
}

func (u ReleaseUpdate) columns() map[string]interface{} {
	updates := make(map[string]interface{}, 3)
	if u.NameSet {
		updates["name"] = u.Name
	}
	if u.DateSet {
		updates["date"] = u.Date
	}
	if u.AdditionalInfoSet {
		updates["additional_info"] = u.AdditionalInfo
	}
	return updates
}

// ReleaseRepository 发布数据访问接口
type ReleaseRepository interface {
	// List 获取全部发布，按计划日期倒序
	List(ctx context.Context) ([]*model.Release, error)
	// GetByID 根据ID获取发布
	GetByID(ctx context.Context, id string) (*model.Release, error)
	// Create 创建发布，检查项全部初始化为未完成
	Create(ctx context.Context, input CreateReleaseInput) (*model.Release, error)
	// Update 部分更新发布，不修改检查项
	Update(ctx context.Context, id string, update ReleaseUpdate) (*model.Release, error)
	// ToggleStep 翻转指定下标的检查项，调用方保证下标合法
	ToggleStep(ctx context.Context, id string, index int) (*model.Release, error)
	// Delete 删除发布
	Delete(ctx context.Context, id string) error
}

// releaseRepository 发布数据访问实现
type releaseRepository struct {
	db        *gorm.DB
	checklist *checklist.Checklist
}

// NewReleaseRepository 创建发布数据访问实例
func NewReleaseRepository(db *gorm.DB, list *checklist.Checklist) ReleaseRepository {
	return &releaseRepository{db: db, checklist: list}
}

// List 获取全部发布，按计划日期倒序
func (r *releaseRepository) List(ctx context.Context) ([]*model.Release, error) {
	releases := make([]*model.Release, 0)
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Find(&releases).Error
	if err != nil {
		return nil, err
	}
	return releases, nil
}

// GetByID 根据ID获取发布，不存在时返回 gorm.ErrRecordNotFound
func (r *releaseRepository) GetByID(ctx context.Context, id string) (*model.Release, error) {
	var release model.Release
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&release).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// Create 创建发布
func (r *releaseRepository) Create(ctx context.Context, input CreateReleaseInput) (*model.Release, error) {
	release := &model.Release{
		Name:           input.Name,
		Date:           input.Date,
		AdditionalInfo: input.AdditionalInfo,
		StepsCompleted: model.StepFlags(r.checklist.Blank()),
	}
	if err := r.db.WithContext(ctx).Create(release).Error; err != nil {
		return nil, err
	}
	return release, nil
}

// Update 部分更新发布
func (r *releaseRepository) Update(ctx context.Context, id string, update ReleaseUpdate) (*model.Release, error) {
	if update.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	var release model.Release
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&release).Error; err != nil {
			return err
		}

		columns := update.columns()
		columns["updated_at"] = tx.NowFunc()
		if err := tx.Model(&model.Release{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&release).Error
	})
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// ToggleStep 翻转指定下标的检查项
//
// 读取当前标记后以 revision 做比较交换写回，被并发修改时重新读取，
// 超过 toggleAttempts 次返回 ErrConcurrentModification。
func (r *releaseRepository) ToggleStep(ctx context.Context, id string, index int) (*model.Release, error) {
	db := r.db.WithContext(ctx)

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		flags := current.StepsCompleted.Padded(r.checklist.Len())
		flags[index] = !flags[index]
		now := db.NowFunc()

		result := db.Model(&model.Release{}).
			Where("id = ? AND revision = ?", id, current.Revision).
			Updates(map[string]interface{}{
				"steps_completed": flags,
				"revision":        gorm.Expr("revision + ?", 1),
				"updated_at":      now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			current.StepsCompleted = flags
			current.Revision++
			current.UpdatedAt = now
			return current, nil
		}
	}

	return nil, ErrConcurrentModification
}

// Delete 删除发布，不存在时返回 gorm.ErrRecordNotFound
func (r *releaseRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Release{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
