package access

import (
	"context"

	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
)

// ToolRepository handles data access for tools and member grants.
type ToolRepository interface {
	// GetTool retrieves a tool by ID; nil with no error means absent.
	GetTool(ctx context.Context, id int64) (*domain.Tool, error)

	// ListTools returns all tools ordered by creation time.
	ListTools(ctx context.Context) ([]domain.Tool, error)

	// UserToolIDs returns the IDs of tools the member has unlocked.
	UserToolIDs(ctx context.Context, userID int64) ([]int64, error)

	// CreateGrant inserts a (user, tool) pair. A duplicate pair must come
	// back as an errs.KindConflict error.
	CreateGrant(ctx context.Context, userID, toolID int64) error

	// DeleteGrant removes a (user, tool) pair, succeeding when absent.
	DeleteGrant(ctx context.Context, userID, toolID int64) error
}

// Service evaluates and mutates member tool access.
type Service struct {
	repo ToolRepository
}

func NewService(repo ToolRepository) *Service {
	return &Service{repo: repo}
}

// Grant unlocks a tool for a member. The member's tier must satisfy the
// tool's access level; a repeated grant is a conflict, not a no-op.
func (s *Service) Grant(ctx context.Context, userID int64, userTier Tier, toolID int64) error {
	if userID == 0 {
		return errs.Unauthenticated("sign in to unlock tools")
	}
	tool, err := s.repo.GetTool(ctx, toolID)
	if err != nil {
		return err
	}
	if tool == nil {
		return errs.NotFound("TOOL_NOT_FOUND", "tool not found")
	}
	if !CanAccess(userTier, Tier(tool.AccessLevel)) {
		return errs.Forbidden("tier does not grant access to this tool")
	}
	return s.repo.CreateGrant(ctx, userID, toolID)
}

// Revoke removes a member's grant; revoking an absent grant is a no-op.
func (s *Service) Revoke(ctx context.Context, userID, toolID int64) error {
	if userID == 0 {
		return errs.Unauthenticated("sign in to manage tools")
	}
	return s.repo.DeleteGrant(ctx, userID, toolID)
}

func (s *Service) ListTools(ctx context.Context) ([]domain.Tool, error) {
	return s.repo.ListTools(ctx)
}

func (s *Service) UserToolIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.UserToolIDs(ctx, userID)
}
