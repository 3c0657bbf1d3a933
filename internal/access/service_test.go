package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
)

type fakeToolRepo struct {
	tools  map[int64]domain.Tool
	grants map[[2]int64]bool
}

func newFakeToolRepo(tools ...domain.Tool) *fakeToolRepo {
	r := &fakeToolRepo{tools: map[int64]domain.Tool{}, grants: map[[2]int64]bool{}}
	for _, t := range tools {
		r.tools[t.ID] = t
	}
	return r
}

func (r *fakeToolRepo) GetTool(_ context.Context, id int64) (*domain.Tool, error) {
	t, ok := r.tools[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeToolRepo) ListTools(_ context.Context) ([]domain.Tool, error) {
	var out []domain.Tool
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeToolRepo) UserToolIDs(_ context.Context, userID int64) ([]int64, error) {
	var out []int64
	for k := range r.grants {
		if k[0] == userID {
			out = append(out, k[1])
		}
	}
	return out, nil
}

func (r *fakeToolRepo) CreateGrant(_ context.Context, userID, toolID int64) error {
	k := [2]int64{userID, toolID}
	if r.grants[k] {
		return errs.Conflict("ALREADY_GRANTED", "tool already unlocked")
	}
	r.grants[k] = true
	return nil
}

func (r *fakeToolRepo) DeleteGrant(_ context.Context, userID, toolID int64) error {
	delete(r.grants, [2]int64{userID, toolID})
	return nil
}

func TestGrant(t *testing.T) {
	repo := newFakeToolRepo(
		domain.Tool{ID: 1, Name: "Wellness Concierge", AccessLevel: string(TierPremium)},
		domain.Tool{ID: 2, Name: "Investment Advisory", AccessLevel: string(TierElite)},
	)
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, 100, TierPremium, 1))

	ids, err := svc.UserToolIDs(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestGrantTierDenied(t *testing.T) {
	repo := newFakeToolRepo(domain.Tool{ID: 2, Name: "Investment Advisory", AccessLevel: string(TierElite)})
	svc := NewService(repo)

	err := svc.Grant(context.Background(), 100, TierPremium, 2)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	assert.Empty(t, repo.grants)
}

func TestGrantUnknownTool(t *testing.T) {
	svc := NewService(newFakeToolRepo())

	err := svc.Grant(context.Background(), 100, TierElite, 42)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "TOOL_NOT_FOUND", errs.CodeOf(err))
}

func TestGrantDuplicate(t *testing.T) {
	repo := newFakeToolRepo(domain.Tool{ID: 1, Name: "Luxury Fleet", AccessLevel: string(TierPremium)})
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, 100, TierVip, 1))

	err := svc.Grant(ctx, 100, TierVip, 1)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestGrantUnauthenticated(t *testing.T) {
	svc := NewService(newFakeToolRepo())
	err := svc.Grant(context.Background(), 0, TierElite, 1)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestRevokeAbsentIsNoop(t *testing.T) {
	svc := NewService(newFakeToolRepo())
	assert.NoError(t, svc.Revoke(context.Background(), 100, 9))
}
