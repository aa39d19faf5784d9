package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
)

func TestListPartnersSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustPartner(t, "Mathematics")
	f.mustPartner(t, "Physics")

	list, err := f.directory.ListPartners(ctx, "mat", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mathematics", list[0].Subject)

	list, err = f.directory.ListPartners(ctx, "", "unknown-sort")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mathematics", list[0].Subject, "storage order preserved")
}

func TestListPartnersSortExpert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, lvl := range []string{"Beginner", "Expert", "Intermediate"} {
		_, err := f.partner.Create(ctx, owner("o@x.com"), CreatePartnerInput{Subject: lvl + " math", ExperienceLevel: lvl})
		require.NoError(t, err)
	}
	list, err := f.directory.ListPartners(ctx, "", repository.SortExpert)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Expert", "Intermediate", "Beginner"},
		[]string{list[0].ExperienceLevel, list[1].ExperienceLevel, list[2].ExperienceLevel})
}

func TestTopRatedOverTenPartners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ratings := []float64{3, 5, 4, 5, 2, 4, 1, 5, 3, 4}
	ids := make([]string, len(ratings))
	for i, r := range ratings {
		rating := r
		p := f.mustPartner(t, fmt.Sprintf("subject-%d", i))
		_, err := f.partner.Update(ctx, p.ID, owner("owner@x.com"), model.PartnerPatch{Rating: &rating})
		require.NoError(t, err)
		ids[i] = p.ID
	}
	// 评分相同的 1、3、7 号按 partnerCount 区分
	for i := 0; i < 2; i++ {
		_, err := f.matching.CreateRequest(ctx, CreateRequestInput{SenderEmail: fmt.Sprintf("u%d@x.com", i), PartnerID: ids[7]})
		require.NoError(t, err)
	}
	_, err := f.matching.CreateRequest(ctx, CreateRequestInput{SenderEmail: "u9@x.com", PartnerID: ids[3]})
	require.NoError(t, err)

	list, err := f.directory.TopRated(ctx, 6)
	require.NoError(t, err)
	require.Len(t, list, 6)

	got := make([]string, len(list))
	for i, p := range list {
		got[i] = p.ID
	}
	// rating 5: 7(2), 3(1), 1(0)；rating 4: 2、5、9 按创建顺序
	assert.Equal(t, []string{ids[7], ids[3], ids[1], ids[2], ids[5], ids[9]}, got)

	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		assert.True(t, prev.Rating > cur.Rating || (prev.Rating == cur.Rating && prev.PartnerCount >= cur.PartnerCount))
	}
}

func TestTopRatedUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustPartner(t, "Math")

	list, err := f.directory.TopRated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	cached, ok := f.cache.Get(ctx, DefaultTopRatedLimit)
	require.True(t, ok, "default limit is cached")
	assert.Len(t, cached, 1)

	f.mustPartner(t, "Physics")
	_, ok = f.cache.Get(ctx, DefaultTopRatedLimit)
	assert.False(t, ok, "create invalidates")

	list, err = f.directory.TopRated(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	_, ok = f.cache.Get(ctx, MaxTopRatedLimit)
	assert.True(t, ok, "limit is capped")
}

// interleavedTopRated 在读库完成、回填缓存之前执行 between
type interleavedTopRated struct {
	repository.PartnerRepository
	between func()
}

func (r *interleavedTopRated) TopRated(ctx context.Context, limit int) ([]*model.Partner, error) {
	list, err := r.PartnerRepository.TopRated(ctx, limit)
	if r.between != nil {
		fn := r.between
		r.between = nil
		fn()
	}
	return list, err
}

func TestTopRatedStaleFillDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.mustPartner(t, "Math")

	repo := &interleavedTopRated{PartnerRepository: f.partners}
	repo.between = func() {
		_, err := f.matching.CreateRequest(ctx, CreateRequestInput{SenderEmail: "a@x.com", PartnerID: p.ID})
		require.NoError(t, err)
	}
	dir := NewDirectoryService(repo, f.cache, f.opts)

	list, err := dir.TopRated(ctx, 6)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].PartnerCount, "read happened before the request")

	_, ok := f.cache.Get(ctx, 6)
	assert.False(t, ok, "fill from before the invalidation is dropped")

	list, err = dir.TopRated(ctx, 6)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].PartnerCount)
	assert.Equal(t, f.count(t, p.ID), list[0].PartnerCount)
}

type blockingPartners struct {
	repository.PartnerRepository
}

func (blockingPartners) GetByID(ctx context.Context, _ string) (*model.Partner, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStoreTimeout(t *testing.T) {
	svc := NewDirectoryService(blockingPartners{}, nil, Options{QueryTimeout: 20 * time.Millisecond})
	_, err := svc.GetPartner(context.Background(), "p")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGetPartner(t *testing.T) {
	f := newFixture(t)
	p := f.mustPartner(t, "Math")

	got, err := f.directory.GetPartner(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.directory.GetPartner(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
