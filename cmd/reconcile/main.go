// reconcile 按请求集合重算所有学伴的 partnerCount
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/config"
	"github.com/d60-Lab/study-partner/internal/app"
	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/pkg/database"
	"github.com/d60-Lab/study-partner/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close(db)

	topRated, closeCache, err := app.NewTopRatedCache(cfg)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	defer closeCache()

	// CLI 以运维身份运行，不走归属校验
	cfg.Auth.EnforceOwnership = false
	svcs := app.NewServices(cfg, db, topRated)

	fixed, err := svcs.Matching.ReconcileCounters(context.Background(), auth.Identity{Email: "cli@localhost"})
	if err != nil {
		logger.Fatal("reconcile failed", zap.Error(err))
	}
	fmt.Printf("corrected %d partner counters\n", fixed)
}
