package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"streamta/config"
	"streamta/internal/indicator"
	"streamta/internal/logger"
	"streamta/internal/metrics"
	"streamta/internal/model"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "[demo] invalid config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Init("streamta-demo", cfg.Level())

	// Single indicator: construct, feed a literal sequence, read Curr().
	sma, err := indicator.NewSMA(3, 2)
	if err != nil {
		log.Error("init failed", "error", err)
		os.Exit(1)
	}
	for _, x := range []float64{1, 2, 3, 4} {
		sma.Update(x)
	}
	fmt.Printf("SMA(3) of [1 2 3 4]: curr=%s prev=%s\n",
		model.FormatValue(sma.Curr(), 2), model.FormatValue(sma.Get(1), 2))

	// Engine over a literal bar series.
	reg := prometheus.NewRegistry()
	engine, err := indicator.NewEngine(indicator.EngineConfig{
		Indicators: cfg.Indicators,
		MaxSymbols: cfg.MaxSymbols,
		Logger:     log,
		Metrics:    metrics.NewMetrics(cfg.MetricsNamespace, reg),
	})
	if err != nil {
		log.Error("engine init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID("demo", time.Now()))

	bars := demoBars("DEMO", 60)
	barCh := make(chan model.Bar, len(bars))
	for _, b := range bars {
		barCh <- b
	}
	close(barCh)

	resultCh := make(chan model.IndicatorResult, len(bars)*len(cfg.Indicators))
	engine.Run(ctx, barCh, resultCh)
	close(resultCh)

	// Keep the last result per indicator.
	last := make(map[string]model.IndicatorResult)
	var order []string
	for r := range resultCh {
		if _, seen := last[r.Name]; !seen {
			order = append(order, r.Name)
		}
		last[r.Name] = r
	}
	for _, name := range order {
		r := last[name]
		parts := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			parts = append(parts, f.Name+"="+model.FormatValue(f.Value, 4))
		}
		fmt.Printf("%-14s ready=%-5v %s\n", name, r.Ready, strings.Join(parts, " "))
	}

	if n, err := gatheredSeries(reg); err == nil {
		log.Info("demo finished", "symbols", len(engine.Symbols()), "metric_series", n)
	}
}

// demoBars builds a deterministic zig-zag trend of n bars.
func demoBars(symbol string, n int) []model.Bar {
	start := time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	price := 100.0
	for i := range bars {
		step := 0.8
		if i%5 == 3 || i%5 == 4 {
			step = -1.1
		}
		open := price
		price += step
		bars[i] = model.Bar{
			Symbol: symbol,
			TS:     start.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   max(open, price) + 0.4,
			Low:    min(open, price) - 0.3,
			Close:  price,
			Volume: float64(1000 + 37*(i%9)),
		}
	}
	return bars
}

func gatheredSeries(reg *prometheus.Registry) (int, error) {
	mfs, err := reg.Gather()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, mf := range mfs {
		n += len(mf.GetMetric())
	}
	return n, nil
}
