package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"streamta/internal/logger"
	"streamta/internal/metrics"
	"streamta/internal/model"
)

// DefaultMaxSymbols bounds per-symbol state when EngineConfig.MaxSymbols is 0.
const DefaultMaxSymbols = 4096

// EngineConfig wires an Engine.
type EngineConfig struct {
	Indicators []IndicatorConfig
	// MaxSymbols caps how many symbols keep indicator state. When a new
	// symbol arrives at the cap, the least recently updated one is evicted
	// and starts warm-up again if it reappears.
	MaxSymbols int
	Logger     *slog.Logger     // nil means slog.Default()
	Metrics    *metrics.Metrics // nil disables instrumentation
}

// symbolIndicators holds live indicator instances for one symbol.
type symbolIndicators struct {
	indicators []Indicator
	warming    int // instances not yet Ready
}

// Engine computes a fixed set of indicators for every symbol it sees.
// Designed for single-goroutine usage.
type Engine struct {
	configs []IndicatorConfig
	log     *slog.Logger
	prom    *metrics.Metrics
	updates []prometheus.Counter // per config, nil without metrics

	state *lru.Cache[string, *symbolIndicators]
}

// NewEngine validates every indicator config and creates an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if len(cfg.Indicators) == 0 {
		return nil, errors.New("indicator: engine needs at least one indicator")
	}
	if err := ValidateConfigs(cfg.Indicators); err != nil {
		return nil, err
	}

	if cfg.MaxSymbols < 0 {
		return nil, fmt.Errorf("indicator: max symbols must not be negative, got %d", cfg.MaxSymbols)
	}
	maxSymbols := cfg.MaxSymbols
	if maxSymbols == 0 {
		maxSymbols = DefaultMaxSymbols
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		configs: append([]IndicatorConfig(nil), cfg.Indicators...),
		log:     log.With(slog.String("component", "engine")),
		prom:    cfg.Metrics,
	}
	state, err := lru.NewWithEvict[string, *symbolIndicators](maxSymbols, e.onEvict)
	if err != nil {
		return nil, err
	}
	e.state = state
	if e.prom != nil {
		e.updates = make([]prometheus.Counter, len(e.configs))
		for i, ic := range e.configs {
			e.updates[i] = e.prom.UpdatesTotal.WithLabelValues(strings.ToUpper(ic.Type))
		}
	}
	return e, nil
}

// Process feeds a completed bar to every indicator of its symbol.
// Returns one result per configured indicator, including not-ready ones.
func (e *Engine) Process(bar model.Bar) []model.IndicatorResult {
	start := time.Now()

	key := bar.Key()
	si, exists := e.state.Get(key)
	if !exists {
		// First bar for this symbol; create indicator instances
		si = e.createSymbolIndicators()
		e.state.Add(key, si)
		e.log.Debug("tracking symbol", slog.String("symbol", key), slog.Int("indicators", len(si.indicators)))
		if e.prom != nil {
			e.prom.SymbolsTracked.Set(float64(e.state.Len()))
			e.prom.WarmingIndicators.Add(float64(si.warming))
		}
	}

	results := make([]model.IndicatorResult, 0, len(si.indicators))
	for i, ind := range si.indicators {
		wasReady := ind.Ready()
		ind.UpdateBar(bar)
		ready := ind.Ready()
		if !wasReady && ready {
			si.warming--
			if e.prom != nil {
				e.prom.WarmingIndicators.Dec()
			}
		}
		if e.updates != nil {
			e.updates[i].Inc()
		}
		results = append(results, model.IndicatorResult{
			Name:   ind.Name(),
			Symbol: bar.Symbol,
			TS:     bar.TS,
			Fields: ind.Fields(),
			Ready:  ready,
		})
	}

	if e.prom != nil {
		e.prom.ComputeDur.Observe(time.Since(start).Seconds())
	}
	return results
}

// ProcessPeek previews indicator values for a forming bar using Peek.
// Does NOT mutate indicator state. Only indicators that support Peek are
// reported. Returns nil if the symbol hasn't been seen by Process yet.
func (e *Engine) ProcessPeek(bar model.Bar) []model.IndicatorResult {
	si, exists := e.state.Peek(bar.Key())
	if !exists {
		return nil
	}

	results := make([]model.IndicatorResult, 0, len(si.indicators))
	for _, ind := range si.indicators {
		p, ok := ind.(Peeker)
		if !ok {
			continue
		}
		results = append(results, model.IndicatorResult{
			Name:   ind.Name(),
			Symbol: bar.Symbol,
			TS:     bar.TS,
			Fields: []model.Field{{Name: "value", Value: p.Peek(bar.Close)}},
			Ready:  ind.Ready(),
			Live:   true,
		})
	}
	return results
}

// Run consumes bars and emits indicator results. Blocks until ctx is done
// or bars is closed. Results are dropped when out is full.
func (e *Engine) Run(ctx context.Context, bars <-chan model.Bar, out chan<- model.IndicatorResult) {
	trace := logger.LogWithTrace(ctx)
	e.log.Info("engine started", append(trace, slog.Int("indicators", len(e.configs)))...)

	var processed, dropped int
	defer func() {
		e.log.Info("engine stopped",
			append(trace, slog.Int("bars", processed), slog.Int("dropped", dropped), slog.Int("symbols", e.state.Len()))...)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case bar, ok := <-bars:
			if !ok {
				return
			}
			processed++
			for _, r := range e.Process(bar) {
				select {
				case out <- r:
				default:
					// drop if channel full
					dropped++
					if e.prom != nil {
						e.prom.ResultsDropped.Inc()
					}
				}
			}
		}
	}
}

// Symbols returns the symbols with live indicator state, sorted.
func (e *Engine) Symbols() []string {
	out := e.state.Keys()
	sort.Strings(out)
	return out
}

// onEvict drops the metrics contribution of an evicted symbol.
func (e *Engine) onEvict(symbol string, si *symbolIndicators) {
	e.log.Debug("evicting symbol", slog.String("symbol", symbol), slog.Int("warming", si.warming))
	if e.prom != nil {
		e.prom.WarmingIndicators.Sub(float64(si.warming))
	}
}

// Configs returns a copy of the engine's indicator configs.
func (e *Engine) Configs() []IndicatorConfig {
	return append([]IndicatorConfig(nil), e.configs...)
}

// createSymbolIndicators creates fresh indicator instances from the
// configs. Configs were validated by NewEngine, so New cannot fail here.
func (e *Engine) createSymbolIndicators() *symbolIndicators {
	inds := make([]Indicator, len(e.configs))
	for i, ic := range e.configs {
		ind, err := New(ic)
		if err != nil {
			panic("indicator: validated config failed: " + err.Error())
		}
		inds[i] = ind
	}
	return &symbolIndicators{indicators: inds, warming: len(inds)}
}
