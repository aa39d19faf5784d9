// matchbench 并发发送/撤回学伴请求，测量延迟并检查 partnerCount 与请求集合是否一致
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/d60-Lab/study-partner/config"
	"github.com/d60-Lab/study-partner/internal/app"
	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
	"github.com/d60-Lab/study-partner/internal/service"
	"github.com/d60-Lab/study-partner/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

type job struct {
	sender  string
	partner string
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	// 压测绕过归属校验，发送者由任务指定
	cfg.Auth.EnforceOwnership = false
	svcs := app.NewServices(cfg, db, nil)
	partnerRepo := repository.NewPartnerRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	// DUP 为每个 (sender, partner) 的重复提交次数
	N := envInt("N", 2000)
	CONC := envInt("CONC", 8)
	PARTNERS := envInt("PARTNERS", 10)
	DUP := envInt("DUP", 2)

	ctx := context.Background()
	partners := make([]*model.Partner, PARTNERS)
	for i := range partners {
		partners[i] = must(svcs.Partners.Create(ctx, auth.Identity{Email: fmt.Sprintf("owner%d@bench.local", i)},
			service.CreatePartnerInput{Name: fmt.Sprintf("p%d", i), Subject: "Math", ExperienceLevel: model.LevelExpert}))
	}

	feed := make(chan job, N*DUP)
	for i := 0; i < N; i++ {
		j := job{sender: fmt.Sprintf("s%d@bench.local", i), partner: partners[i%PARTNERS].ID}
		for d := 0; d < DUP; d++ {
			feed <- j
		}
	}
	close(feed)

	var (
		mu      sync.Mutex
		lat     = make([]time.Duration, 0, N*DUP)
		created = make([]string, 0, N)
		dups    atomic.Int64
		fails   atomic.Int64
		wg      sync.WaitGroup
	)
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range feed {
				st := time.Now()
				req, err := svcs.Matching.CreateRequest(ctx, service.CreateRequestInput{SenderEmail: j.sender, PartnerID: j.partner})
				d := time.Since(st)
				switch {
				case errors.Is(err, service.ErrDuplicateRequest):
					dups.Add(1)
				case err != nil:
					fails.Add(1)
				}
				mu.Lock()
				lat = append(lat, d)
				if err == nil {
					created = append(created, req.ID)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	createDur := time.Since(t0)

	// 撤回一半
	t1 := time.Now()
	deleted := 0
	for i := 0; i < len(created); i += 2 {
		if err := svcs.Matching.DeleteRequest(ctx, created[i], auth.Identity{}); err == nil {
			deleted++
		}
	}
	deleteDur := time.Since(t1)

	drift := 0
	for _, p := range partners {
		got := must(partnerRepo.GetByID(ctx, p.ID))
		want := must(requestRepo.CountByPartner(ctx, p.ID))
		if int64(got.PartnerCount) != want {
			drift++
		}
	}
	fixed := must(svcs.Matching.ReconcileCounters(ctx, auth.Identity{}))

	fmt.Printf("N=%d, CONC=%d, PARTNERS=%d, DUP=%d\n", N, CONC, PARTNERS, DUP)
	fmt.Printf("Create total: %v, ok=%d, duplicates=%d, failed=%d, p50: %v, p95: %v, p99: %v\n",
		createDur, len(created), dups.Load(), fails.Load(), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	fmt.Printf("Delete total: %v, deleted=%d\n", deleteDur, deleted)
	fmt.Printf("Counter drift: %d partners, reconcile corrected %d\n", drift, fixed)
}
