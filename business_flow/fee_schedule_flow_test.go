package businessflow

import (
	"context"
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListTierRepo struct {
	repository.WaiverTierRepository
	tiers     []*models.WaiverTier
	reordered map[uint]int
}

func (f *fakeListTierRepo) ListAll(ctx context.Context) ([]*models.WaiverTier, error) {
	return f.tiers, nil
}

func (f *fakeListTierRepo) ReorderPriorities(ctx context.Context, priorities map[uint]int) error {
	f.reordered = priorities
	return nil
}

func (f *fakeListTierRepo) ByID(ctx context.Context, id uint) (*models.WaiverTier, error) {
	for _, tier := range f.tiers {
		if tier.ID == id {
			return tier, nil
		}
	}
	return nil, nil
}

func (f *fakeListTierRepo) Save(ctx context.Context, tier *models.WaiverTier) error {
	tier.ID = uint(len(f.tiers) + 1)
	f.tiers = append(f.tiers, tier)
	return nil
}

func reorderTestFlow() (*FeeScheduleFlowImpl, *fakeListTierRepo) {
	tierRepo := &fakeListTierRepo{
		tiers: []*models.WaiverTier{
			{ID: 1, Name: "Silver", FuelUpliftMultiplier: d("1.0"), TierPriority: 1},
			{ID: 2, Name: "Gold", FuelUpliftMultiplier: d("2.0"), TierPriority: 2},
			{ID: 3, Name: "CAA Gold", FuelUpliftMultiplier: d("2.0"), TierPriority: 1, IsCAASpecificTier: true},
		},
	}
	return &FeeScheduleFlowImpl{tierRepo: tierRepo}, tierRepo
}

func TestReorderWaiverTiers(t *testing.T) {
	t.Run("SwapsPriorities", func(t *testing.T) {
		flow, tierRepo := reorderTestFlow()
		priorities := map[uint]int{1: 2, 2: 1}
		require.NoError(t, flow.ReorderWaiverTiers(context.Background(), priorities))
		assert.Equal(t, priorities, tierRepo.reordered)
	})

	t.Run("ConflictWithinPartitionRejected", func(t *testing.T) {
		flow, tierRepo := reorderTestFlow()
		err := flow.ReorderWaiverTiers(context.Background(), map[uint]int{1: 2})
		require.Error(t, err)
		assert.True(t, IsTierPriorityConflict(err))
		assert.Nil(t, tierRepo.reordered, "no write may happen on a rejected reorder")
	})

	t.Run("SamePriorityAcrossPartitionsAllowed", func(t *testing.T) {
		flow, tierRepo := reorderTestFlow()
		require.NoError(t, flow.ReorderWaiverTiers(context.Background(), map[uint]int{3: 2}))
		assert.NotNil(t, tierRepo.reordered)
	})

	t.Run("UnknownTierRejected", func(t *testing.T) {
		flow, _ := reorderTestFlow()
		err := flow.ReorderWaiverTiers(context.Background(), map[uint]int{99: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWaiverTierNotFound)
	})

	t.Run("EmptyAssignmentRejected", func(t *testing.T) {
		flow, _ := reorderTestFlow()
		err := flow.ReorderWaiverTiers(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestCreateWaiverTierValidation(t *testing.T) {
	t.Run("PriorityConflictRejected", func(t *testing.T) {
		flow, _ := reorderTestFlow()
		err := flow.CreateWaiverTier(context.Background(), &models.WaiverTier{
			Name:                 "Bronze",
			FuelUpliftMultiplier: d("0.5"),
			TierPriority:         1,
		})
		require.Error(t, err)
		assert.True(t, IsTierPriorityConflict(err))
	})

	t.Run("CAAPartitionIndependent", func(t *testing.T) {
		flow, tierRepo := reorderTestFlow()
		err := flow.CreateWaiverTier(context.Background(), &models.WaiverTier{
			Name:                 "CAA Silver",
			FuelUpliftMultiplier: d("1.0"),
			FeesWaivedCodes:      pq.StringArray{"RAMP"},
			TierPriority:         2,
			IsCAASpecificTier:    true,
		})
		require.NoError(t, err)
		assert.Len(t, tierRepo.tiers, 4)
	})

	t.Run("NonPositiveMultiplierRejected", func(t *testing.T) {
		flow, _ := reorderTestFlow()
		err := flow.CreateWaiverTier(context.Background(), &models.WaiverTier{
			Name:                 "Broken",
			FuelUpliftMultiplier: d("0"),
			TierPriority:         9,
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}
