package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/adapter/storage"
	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/core/ledger"
	"github.com/rl1809/stock-pos/internal/logging"
)

const (
	coffeeID      int64 = 900001
	cupID         int64 = 900002
	coffeeStock         = 20
	cupStock            = 30
	totalRequests       = 50
	queueSize           = 100
)

// Every sale takes one coffee and one cup. Coffee runs out first; no cup
// may be sold once it has.
func main() {
	logging.Setup("stress_test", "warn", false)
	ctx := context.Background()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	redisAdapter := storage.NewRedisAdapter(rdb)
	if err := redisAdapter.SetStock(ctx, coffeeID, coffeeStock); err != nil {
		log.Fatal().Err(err).Msg("failed to set stock")
	}
	if err := redisAdapter.SetStock(ctx, cupID, cupStock); err != nil {
		log.Fatal().Err(err).Msg("failed to set stock")
	}

	ledgerService := ledger.NewService(nil, redisAdapter, queueSize)
	defer ledgerService.Close()

	go func() {
		for range ledgerService.GetSaleQueue() {
		}
	}()

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			seller := &domain.Caller{AuthUserID: fmt.Sprintf("seller-%d", n), Role: domain.RoleOperator}
			_, err := ledgerService.RecordSale(ctx, seller, domain.Sale{
				Lines: []domain.SaleLine{
					{ItemID: coffeeID, Amount: 1, Price: decimal.NewFromInt(3)},
					{ItemID: cupID, Amount: 1, Price: decimal.Zero},
				},
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Coffee Stock:     %d\n", coffeeStock)
	fmt.Printf("Cup Stock:        %d\n", cupStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == coffeeStock && fail == totalRequests-coffeeStock {
		fmt.Printf("PASS: Exactly %d sales succeeded, %d failed\n", coffeeStock, totalRequests-coffeeStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			coffeeStock, totalRequests-coffeeStock, success, fail)
	}

	coffee, _, _ := redisAdapter.GetStock(ctx, coffeeID)
	cups, _, _ := redisAdapter.GetStock(ctx, cupID)
	fmt.Printf("Final Coffee Stock: %d\n", coffee)
	fmt.Printf("Final Cup Stock:    %d\n", cups)

	if coffee == 0 && cups == cupStock-coffeeStock {
		fmt.Println("PASS: No partial sale reserved stock")
	} else {
		fmt.Printf("FAIL: Expected coffee 0 and cups %d, got %d and %d\n", cupStock-coffeeStock, coffee, cups)
	}
}
