package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Partner{}, &model.Request{}, &model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stepClock 每次调用前进一秒，保证 created_at 严格递增
func stepClock() func() time.Time {
	var n atomic.Int64
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

type recordingCache struct {
	mu          sync.Mutex
	entries     map[int][]*model.Partner
	gen         uint64
	invalidated int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[int][]*model.Partner{}}
}

func (c *recordingCache) Get(_ context.Context, limit int) ([]*model.Partner, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[limit]
	return v, ok
}

func (c *recordingCache) Generation(context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *recordingCache) Set(_ context.Context, gen uint64, limit int, list []*model.Partner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.entries[limit] = list
}

func (c *recordingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[int][]*model.Partner{}
	c.gen++
	c.invalidated++
}

func (c *recordingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type fixture struct {
	db        *gorm.DB
	partners  repository.PartnerRepository
	requests  repository.RequestRepository
	cache     *recordingCache
	opts      Options
	matching  MatchingService
	partner   PartnerService
	directory DirectoryService
	profiles  ProfileService
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	db := setupDB(t)
	opts := Options{
		EnforceOwnership: true,
		QueryTimeout:     5 * time.Second,
		AdminEmails:      []string{"admin@x.com"},
		Now:              stepClock(),
	}
	for _, m := range mutate {
		m(&opts)
	}
	f := &fixture{
		db:       db,
		partners: repository.NewPartnerRepository(db),
		requests: repository.NewRequestRepository(db),
		cache:    newRecordingCache(),
		opts:     opts,
	}
	f.matching = NewMatchingService(repository.NewTxManager(db), f.requests, f.partners, f.cache, opts)
	f.partner = NewPartnerService(f.partners, f.cache, opts)
	f.directory = NewDirectoryService(f.partners, f.cache, opts)
	f.profiles = NewProfileService(repository.NewUserRepository(db), opts)
	return f
}

func owner(email string) auth.Identity { return auth.Identity{Email: email, Name: "n"} }

func (f *fixture) mustPartner(t *testing.T, subject string) *model.Partner {
	t.Helper()
	p, err := f.partner.Create(context.Background(), owner("owner@x.com"), CreatePartnerInput{Subject: subject})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	return p
}

func (f *fixture) count(t *testing.T, partnerID string) int {
	t.Helper()
	p, err := f.partners.GetByID(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("get partner: %v", err)
	}
	return p.PartnerCount
}
