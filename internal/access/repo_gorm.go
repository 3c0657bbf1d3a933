package access

import (
	"context"
	"errors"

	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
	"gorm.io/gorm"
)

// GormToolRepository is the Postgres-backed ToolRepository.
type GormToolRepository struct {
	db *gorm.DB
}

func NewGormToolRepository(db *gorm.DB) *GormToolRepository {
	return &GormToolRepository{db: db}
}

var _ ToolRepository = (*GormToolRepository)(nil)

func (r *GormToolRepository) GetTool(ctx context.Context, id int64) (*domain.Tool, error) {
	var tool domain.Tool
	err := r.db.WithContext(ctx).First(&tool, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to query tool")
	}
	return &tool, nil
}

func (r *GormToolRepository) ListTools(ctx context.Context) ([]domain.Tool, error) {
	var tools []domain.Tool
	if err := r.db.WithContext(ctx).Order("created_at").Find(&tools).Error; err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to list tools")
	}
	return tools, nil
}

func (r *GormToolRepository) UserToolIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.UserTool{}).
		Where("user_id = ?", userID).
		Pluck("tool_id", &ids).Error
	if err != nil {
		return nil, errs.Upstream(err, "DATABASE_ERROR", "failed to list member tools")
	}
	return ids, nil
}

func (r *GormToolRepository) CreateGrant(ctx context.Context, userID, toolID int64) error {
	err := r.db.WithContext(ctx).Create(&domain.UserTool{UserID: userID, ToolID: toolID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("ALREADY_GRANTED", "tool already unlocked")
	}
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to grant tool access")
	}
	return nil
}

func (r *GormToolRepository) DeleteGrant(ctx context.Context, userID, toolID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tool_id = ?", userID, toolID).
		Delete(&domain.UserTool{}).Error
	if err != nil {
		return errs.Upstream(err, "DATABASE_ERROR", "failed to revoke tool access")
	}
	return nil
}
