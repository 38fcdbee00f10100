package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/engine"
	"github.com/openexch/matchcore/pkg/logging"
	"github.com/openexch/matchcore/pkg/model"
	"github.com/openexch/matchcore/pkg/store"
)

// In-process load driver: floods the engine with randomized order intents
// across a set of instruments and reports throughput plus latency
// percentiles. No transport involved, this measures the matching core.

func main() {
	var (
		shards      = flag.Int("shards", 0, "engine shards (0 = NumCPU)")
		conns       = flag.Int("c", 8, "concurrent submitter goroutines")
		total       = flag.Int("n", 100000, "total orders to submit")
		instruments = flag.Int("instruments", 8, "number of instruments to spread load over")
		cancelPct   = flag.Int("cancel", 10, "percent of iterations that also cancel a resting order")
		statsMode   = flag.Bool("stats", false, "record per-order latency and print p50/p90/p99")
	)
	flag.Parse()

	log := logging.WithComponent("simulate")

	eng := engine.NewEngine(*shards, 1024)
	defer eng.Stop()

	resting := store.NewStore()

	symbols := make([]string, *instruments)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SIM-%d", i)
	}

	perWorker := (*total + *conns - 1) / *conns

	var mu sync.Mutex
	durations := make([]float64, 0, *total) // ms
	var submitted, filled, rejected, canceled int

	var wg sync.WaitGroup
	start := time.Now()

	worker := func(id int) {
		defer wg.Done()
		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

		for j := 0; j < perWorker; j++ {
			mu.Lock()
			done := submitted
			mu.Unlock()
			if done >= *total {
				return
			}

			o := randomOrder(rng, symbols[rng.Intn(len(symbols))])

			t0 := time.Now()
			res, err := eng.Submit(o)
			elapsed := time.Since(t0).Seconds() * 1000.0

			if err != nil {
				log.WithError(err).Error("submit failed")
				continue
			}

			mu.Lock()
			submitted++
			if *statsMode {
				durations = append(durations, elapsed)
			}
			switch res.Order.Status {
			case model.StatusFilled:
				filled++
			case model.StatusRejected:
				rejected++
			}
			mu.Unlock()

			// track resting GTC orders as future cancel targets
			if res.Order.Kind == model.LIMIT && !res.Order.IsTerminal() && res.Order.TimeInForce == model.GTC {
				resting.Add(res.Order)
			}

			if rng.Intn(100) < *cancelPct {
				if victim, ok := resting.Any(); ok {
					_ = resting.Remove(victim.ID)
					if c := eng.Cancel(victim.Instrument, victim.ID); c.OK {
						mu.Lock()
						canceled++
						mu.Unlock()
					}
				}
			}
		}
	}

	for i := 0; i < *conns; i++ {
		wg.Add(1)
		go worker(i)
	}
	wg.Wait()

	elapsed := time.Since(start).Seconds()

	log.WithFields(map[string]interface{}{
		"submitted": submitted,
		"filled":    filled,
		"rejected":  rejected,
		"canceled":  canceled,
		"duration":  fmt.Sprintf("%.2fs", elapsed),
		"orders/s":  fmt.Sprintf("%.0f", float64(submitted)/elapsed),
	}).Info("run complete")

	for _, sym := range symbols {
		snap := eng.Book(sym, 3)
		log.WithFields(map[string]interface{}{
			"instrument": sym,
			"bid_levels": len(snap.Bids),
			"ask_levels": len(snap.Asks),
		}).Debug("book depth")
	}

	printCounters(log)

	if *statsMode {
		printLatency(durations)
	}
}

// randomOrder builds a plausible intent around a drifting mid price.
func randomOrder(rng *rand.Rand, instrument string) *model.Order {
	side := model.BUY
	if rng.Intn(2) == 0 {
		side = model.SELL
	}

	kind := model.LIMIT
	if rng.Intn(100) < 5 {
		kind = model.MARKET
	}

	tif := model.GTC
	switch rng.Intn(10) {
	case 0:
		tif = model.IOC
	case 1:
		tif = model.FOK
	}

	// price in cents, clustered around 100.00
	price := decimal.New(int64(10000+rng.Intn(200)-100), -2)
	qty := decimal.NewFromInt(int64(1 + rng.Intn(100)))

	o := model.NewOrder(uuid.NewString(), instrument, side, kind, tif, price, qty)
	o.Timestamp = time.Now().UnixMilli()
	return o
}

func printCounters(log interface{ Infof(string, ...interface{}) }) {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return
	}
	for _, mf := range mfs {
		if mf.GetName() != "matchcore_orders_submitted_total" &&
			mf.GetName() != "matchcore_trades_executed_total" {
			continue
		}
		sum := 0.0
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		log.Infof("%s = %.0f", mf.GetName(), sum)
	}
}

func printLatency(durations []float64) {
	n := len(durations)
	if n == 0 {
		return
	}
	sort.Float64s(durations)

	var sum, max float64
	for _, v := range durations {
		sum += v
		if v > max {
			max = v
		}
	}

	p := func(q float64) float64 {
		idx := int(math.Floor(q*float64(n-1) + 0.5))
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		return durations[idx]
	}

	fmt.Printf("LATENCY(ms): mean=%.4f max=%.4f p50=%.4f p90=%.4f p99=%.4f\n",
		sum/float64(n), max, p(0.50), p(0.90), p(0.99))
}
