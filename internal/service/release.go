package service

import (
	"context"
	stderrors "errors"

	"github.com/bingooyong/release-tracker/internal/metrics"
	"github.com/bingooyong/release-tracker/internal/model"
	"github.com/bingooyong/release-tracker/internal/repository"
	"github.com/bingooyong/release-tracker/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReleaseService 发布服务接口
type ReleaseService interface {
	// List 获取全部发布
	List(ctx context.Context) ([]*model.Release, error)
	// Get 获取发布详情
	Get(ctx context.Context, id string) (*model.Release, error)
	// Create 创建发布
	Create(ctx context.Context, input repository.CreateReleaseInput) (*model.Release, error)
	// Update 部分更新发布
	Update(ctx context.Context, id string, update repository.ReleaseUpdate) (*model.Release, error)
	// ToggleStep 翻转检查项
	ToggleStep(ctx context.Context, id string, index int) (*model.Release, error)
	// Delete 删除发布
	Delete(ctx context.Context, id string) error
}

// releaseService 发布服务实现
type releaseService struct {
	releaseRepo repository.ReleaseRepository
	logger      *zap.Logger
}

// NewReleaseService 创建发布服务实例
func NewReleaseService(releaseRepo repository.ReleaseRepository, logger *zap.Logger) ReleaseService {
	return &releaseService{
		releaseRepo: releaseRepo,
		logger:      logger,
	}
}

// List 获取全部发布
func (s *releaseService) List(ctx context.Context) ([]*model.Release, error) {
	releases, err := s.releaseRepo.List(ctx)
	if err != nil {
		return nil, s.storageError("list", "", "Failed to fetch releases", err)
	}
	metrics.RecordReleaseOperation("list", metrics.ResultSuccess)
	return releases, nil
}

// Get 获取发布详情
func (s *releaseService) Get(ctx context.Context, id string) (*model.Release, error) {
	release, err := s.releaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get", id, "Failed to fetch release", err)
	}
	metrics.RecordReleaseOperation("get", metrics.ResultSuccess)
	return release, nil
}

// Create 创建发布
func (s *releaseService) Create(ctx context.Context, input repository.CreateReleaseInput) (*model.Release, error) {
	release, err := s.releaseRepo.Create(ctx, input)
	if err != nil {
		return nil, s.storageError("create", "", "Failed to create release", err)
	}

	metrics.RecordReleaseOperation("create", metrics.ResultSuccess)
	s.logger.Info("release created",
		zap.String("id", release.ID),
		zap.String("name", release.Name),
		zap.Time("date", release.Date))
	return release, nil
}

// Update 部分更新发布
func (s *releaseService) Update(ctx context.Context, id string, update repository.ReleaseUpdate) (*model.Release, error) {
	release, err := s.releaseRepo.Update(ctx, id, update)
	if err != nil {
		if stderrors.Is(err, repository.ErrNoFieldsToUpdate) {
			metrics.RecordReleaseOperation("update", metrics.ResultInvalid)
			return nil, errors.New(errors.ErrInvalidParams, "No fields to update")
		}
		return nil, s.storageError("update", id, "Failed to update release", err)
	}

	metrics.RecordReleaseOperation("update", metrics.ResultSuccess)
	s.logger.Info("release updated", zap.String("id", id))
	return release, nil
}

// ToggleStep 翻转检查项
func (s *releaseService) ToggleStep(ctx context.Context, id string, index int) (*model.Release, error) {
	release, err := s.releaseRepo.ToggleStep(ctx, id, index)
	if err != nil {
		if stderrors.Is(err, repository.ErrConcurrentModification) {
			metrics.RecordReleaseOperation("toggle_step", metrics.ResultConflict)
			s.logger.Warn("toggle step gave up after concurrent modifications",
				zap.String("id", id),
				zap.Int("step_index", index))
			return nil, errors.ErrReleaseConflictMsg
		}
		return nil, s.storageError("toggle_step", id, "Failed to toggle step", err)
	}

	metrics.RecordReleaseOperation("toggle_step", metrics.ResultSuccess)
	s.logger.Info("release step toggled",
		zap.String("id", id),
		zap.Int("step_index", index),
		zap.Bool("completed", release.StepsCompleted[index]))
	return release, nil
}

// Delete 删除发布
func (s *releaseService) Delete(ctx context.Context, id string) error {
	if err := s.releaseRepo.Delete(ctx, id); err != nil {
		return s.storageError("delete", id, "Failed to delete release", err)
	}

	metrics.RecordReleaseOperation("delete", metrics.ResultSuccess)
	s.logger.Info("release deleted", zap.String("id", id))
	return nil
}

// storageError 将仓储错误转换为API错误：记录缺失为404，其余为500并记录日志
func (s *releaseService) storageError(op, id, message string, err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		metrics.RecordReleaseOperation(op, metrics.ResultNotFound)
		return errors.ErrReleaseNotFoundMsg
	}

	metrics.RecordReleaseOperation(op, metrics.ResultError)
	s.logger.Error("release storage failure",
		zap.String("operation", op),
		zap.String("id", id),
		zap.Error(err))
	return errors.Wrap(errors.ErrDatabase, message, err)
}
