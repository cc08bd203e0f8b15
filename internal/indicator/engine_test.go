package indicator

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"streamta/internal/logger"
	"streamta/internal/metrics"
	"streamta/internal/model"
)

func makeBar(symbol string, close float64) model.Bar {
	return model.Bar{
		Symbol: symbol,
		TS:     time.Now().UTC(),
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
		Volume: 100,
	}
}

func newTestEngine(t *testing.T, m *metrics.Metrics, configs ...IndicatorConfig) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{Indicators: configs, Logger: logger.Discard(), Metrics: m})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngine_SMA20(t *testing.T) {
	engine := newTestEngine(t, nil, IndicatorConfig{Type: "SMA", Period: 20})

	// Feed 25 bars with close = 100.00
	for i := 0; i < 25; i++ {
		results := engine.Process(makeBar("SBIN", 100))
		if len(results) != 1 {
			t.Fatalf("bar %d: expected 1 result, got %d", i, len(results))
		}
		r := results[0]
		if r.Name != "SMA_20" {
			t.Errorf("bar %d: expected name=SMA_20, got %s", i, r.Name)
		}
		if i < 19 {
			if r.Ready || !math.IsNaN(r.Primary()) {
				t.Errorf("bar %d: expected warm-up, got ready=%v value=%v", i, r.Ready, r.Primary())
			}
			continue
		}
		if !r.Ready {
			t.Errorf("bar %d: expected Ready=true", i)
		}
		assertClose(t, "SMA_20", r.Primary(), 100.0, 0.001)
	}
}

func TestEngine_AllTypes(t *testing.T) {
	engine := newTestEngine(t, nil,
		IndicatorConfig{Type: "SMA", Period: 5},
		IndicatorConfig{Type: "EMA", Period: 5},
		IndicatorConfig{Type: "SMMA", Period: 5},
		IndicatorConfig{Type: "VAR", Period: 5},
		IndicatorConfig{Type: "STDDEV", Period: 5, DOF: 1},
		IndicatorConfig{Type: "RSI", Period: 14},
		IndicatorConfig{Type: "MACD"},
		IndicatorConfig{Type: "BOLL", Period: 20, DOF: 1},
		IndicatorConfig{Type: "ATR", Period: 14},
		IndicatorConfig{Type: "OBV"},
		IndicatorConfig{Type: "STOCH", Period: 14},
	)

	wantNames := []string{"SMA_5", "EMA_5", "SMMA_5", "VAR_5", "STDDEV_5", "RSI_14", "MACD_12_26_9", "BOLL_20", "ATR_14", "OBV", "STOCH_14"}
	wantFields := []int{1, 1, 1, 1, 1, 1, 3, 3, 1, 1, 1}

	var last []model.IndicatorResult
	for i := 0; i < 40; i++ {
		last = engine.Process(makeBar("A", 100+float64(i%7)))
		if len(last) != len(wantNames) {
			t.Fatalf("bar %d: expected %d results, got %d", i, len(wantNames), len(last))
		}
	}
	for i, r := range last {
		if r.Name != wantNames[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantNames[i], r.Name)
		}
		if len(r.Fields) != wantFields[i] {
			t.Errorf("%s: expected %d fields, got %d", r.Name, wantFields[i], len(r.Fields))
		}
		if !r.Ready {
			t.Errorf("%s: expected ready after 40 bars", r.Name)
		}
	}
}

func TestEngine_SymbolsIndependent(t *testing.T) {
	engine := newTestEngine(t, nil, IndicatorConfig{Type: "SMA", Period: 2})

	engine.Process(makeBar("X", 10))
	engine.Process(makeBar("Y", 100))
	rx := engine.Process(makeBar("X", 20))
	ry := engine.Process(makeBar("Y", 300))

	assertClose(t, "X", rx[0].Primary(), 15, 1e-12)
	assertClose(t, "Y", ry[0].Primary(), 200, 1e-12)
	if rx[0].Symbol != "X" || ry[0].Symbol != "Y" {
		t.Errorf("symbols not propagated: %s %s", rx[0].Symbol, ry[0].Symbol)
	}

	syms := engine.Symbols()
	if len(syms) != 2 || syms[0] != "X" || syms[1] != "Y" {
		t.Errorf("expected [X Y], got %v", syms)
	}
}

func TestEngine_ProcessPeek(t *testing.T) {
	engine := newTestEngine(t, nil,
		IndicatorConfig{Type: "SMA", Period: 2},
		IndicatorConfig{Type: "EMA", Period: 2},
		IndicatorConfig{Type: "RSI", Period: 2},
	)

	if got := engine.ProcessPeek(makeBar("Z", 10)); got != nil {
		t.Fatalf("expected nil peek for unseen symbol, got %v", got)
	}

	engine.Process(makeBar("Z", 10))
	engine.Process(makeBar("Z", 20))

	peek := engine.ProcessPeek(makeBar("Z", 40))
	if len(peek) != 2 {
		t.Fatalf("expected 2 peek results (SMA, EMA), got %d", len(peek))
	}
	for _, r := range peek {
		if !r.Live {
			t.Errorf("%s: expected Live=true", r.Name)
		}
	}
	assertClose(t, "SMA peek", peek[0].Primary(), 30, 1e-12)

	// Peek must not have mutated: the real update still sees [20, 30].
	res := engine.Process(makeBar("Z", 30))
	assertClose(t, "SMA after peek", res[0].Primary(), 25, 1e-12)
}

func TestEngine_RejectsInvalidConfig(t *testing.T) {
	_, err := NewEngine(EngineConfig{Indicators: []IndicatorConfig{{Type: "SMA", Period: 0}}})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	_, err = NewEngine(EngineConfig{Indicators: []IndicatorConfig{{Type: "WMA", Period: 5}}})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}

	if _, err = NewEngine(EngineConfig{}); err == nil {
		t.Error("expected error for empty indicator list")
	}
}

func TestEngine_Run(t *testing.T) {
	engine := newTestEngine(t, nil,
		IndicatorConfig{Type: "SMA", Period: 3},
		IndicatorConfig{Type: "OBV"},
	)

	barCh := make(chan model.Bar, 10)
	resultCh := make(chan model.IndicatorResult, 100)
	for i := 0; i < 5; i++ {
		barCh <- makeBar("R", float64(i))
	}
	close(barCh)

	ctx := logger.WithTraceID(context.Background(), "test-run")
	done := make(chan struct{})
	go func() {
		engine.Run(ctx, barCh, resultCh)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after input closed")
	}

	if len(resultCh) != 10 {
		t.Errorf("expected 10 results, got %d", len(resultCh))
	}
}

func TestEngine_Run_ContextCancel(t *testing.T) {
	engine := newTestEngine(t, nil, IndicatorConfig{Type: "SMA", Period: 3})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx, make(chan model.Bar), make(chan model.IndicatorResult, 1))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	engine := newTestEngine(t, m,
		IndicatorConfig{Type: "SMA", Period: 3},
		IndicatorConfig{Type: "obv"},
	)

	engine.Process(makeBar("M", 1))
	// OBV is ready on its first bar, SMA is still warming.
	if got := testutil.ToFloat64(m.WarmingIndicators); got != 1 {
		t.Errorf("warming after 1 bar: expected 1, got %v", got)
	}
	engine.Process(makeBar("M", 2))
	engine.Process(makeBar("M", 3))
	if got := testutil.ToFloat64(m.WarmingIndicators); got != 0 {
		t.Errorf("warming after 3 bars: expected 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("SMA")); got != 3 {
		t.Errorf("SMA updates: expected 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("OBV")); got != 3 {
		t.Errorf("OBV updates: expected 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.SymbolsTracked); got != 1 {
		t.Errorf("symbols: expected 1, got %v", got)
	}

	// Unbuffered output with no reader drops every result.
	barCh := make(chan model.Bar, 2)
	barCh <- makeBar("M", 4)
	barCh <- makeBar("M", 5)
	close(barCh)
	engine.Run(context.Background(), barCh, make(chan model.IndicatorResult))

	if got := testutil.ToFloat64(m.ResultsDropped); got != 4 {
		t.Errorf("dropped: expected 4, got %v", got)
	}
}

func TestNew_Factory(t *testing.T) {
	ind, err := New(IndicatorConfig{Type: "macd", Periods: []int{3, 6, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if ind.Name() != "MACD_3_6_2" {
		t.Errorf("expected MACD_3_6_2, got %s", ind.Name())
	}

	if _, err := New(IndicatorConfig{Type: "MACD", Periods: []int{12, 26}}); err == nil {
		t.Error("expected error for MACD with 2 periods")
	}

	// A single-element Periods fills Period.
	ind, err = New(IndicatorConfig{Type: "EMA", Periods: []int{9}})
	if err != nil {
		t.Fatal(err)
	}
	if ind.Name() != "EMA_9" {
		t.Errorf("expected EMA_9, got %s", ind.Name())
	}

	// Failed construction returns a nil interface, not a typed nil.
	ind, err = New(IndicatorConfig{Type: "SMA"})
	if err == nil || ind != nil {
		t.Errorf("expected nil indicator and error, got %v, %v", ind, err)
	}
}

func TestEngine_MaxSymbolsEvictsLeastRecent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("lru", reg)
	engine, err := NewEngine(EngineConfig{
		Indicators: []IndicatorConfig{{Type: "SMA", Period: 2}},
		MaxSymbols: 2,
		Logger:     logger.Discard(),
		Metrics:    m,
	})
	if err != nil {
		t.Fatal(err)
	}

	engine.Process(makeBar("A", 1))
	engine.Process(makeBar("B", 1))
	engine.Process(makeBar("A", 3)) // A is now most recent; SMA ready
	engine.Process(makeBar("C", 1)) // evicts B

	syms := engine.Symbols()
	if len(syms) != 2 || syms[0] != "A" || syms[1] != "C" {
		t.Fatalf("expected [A C], got %v", syms)
	}
	// Only C is warming; B's warming instance left with it.
	if got := testutil.ToFloat64(m.WarmingIndicators); got != 1 {
		t.Errorf("warming: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.SymbolsTracked); got != 2 {
		t.Errorf("symbols: expected 2, got %v", got)
	}

	// B comes back cold.
	res := engine.Process(makeBar("B", 5))
	if res[0].Ready {
		t.Error("evicted symbol should restart warm-up")
	}

	if _, err := NewEngine(EngineConfig{Indicators: []IndicatorConfig{{Type: "OBV"}}, MaxSymbols: -1}); err == nil {
		t.Error("expected error for negative MaxSymbols")
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestNew_ExplicitZeroOverridesDefault(t *testing.T) {
	boll, err := New(IndicatorConfig{Type: "BOLL", Period: 2, Z: floatPtr(0)})
	if err != nil {
		t.Fatal(err)
	}
	boll.UpdateBar(makeBar("Z", 10))
	boll.UpdateBar(makeBar("Z", 20))
	f := boll.Fields()
	assertClose(t, "mid", f[0].Value, 15, 1e-12)
	assertClose(t, "upper with z=0", f[1].Value, 15, 1e-12)
	assertClose(t, "lower with z=0", f[2].Value, 15, 1e-12)

	// Unset Z still takes the default.
	boll, err = New(IndicatorConfig{Type: "BOLL", Period: 2})
	if err != nil {
		t.Fatal(err)
	}
	boll.UpdateBar(makeBar("Z", 10))
	boll.UpdateBar(makeBar("Z", 20))
	if f := boll.Fields(); f[1].Value <= f[0].Value {
		t.Errorf("default z should widen the band, got mid=%v upper=%v", f[0].Value, f[1].Value)
	}

	_, err = New(IndicatorConfig{Type: "EMA", Period: 3, Smoothing: floatPtr(0)})
	if !errors.Is(err, ErrInvalidSmoothing) {
		t.Errorf("explicit zero smoothing: expected ErrInvalidSmoothing, got %v", err)
	}
}

func TestNew_MACDDefaultPeriodsNotShared(t *testing.T) {
	cfg := IndicatorConfig{Type: "MACD"}.withDefaults()
	cfg.Periods[0] = 99

	ind, err := New(IndicatorConfig{Type: "MACD"})
	if err != nil {
		t.Fatal(err)
	}
	if ind.Name() != "MACD_12_26_9" {
		t.Errorf("expected MACD_12_26_9, got %s", ind.Name())
	}
}

func TestEngine_ConfigsReturnsCopy(t *testing.T) {
	engine := newTestEngine(t, nil,
		IndicatorConfig{Type: "SMA", Period: 2},
		IndicatorConfig{Type: "OBV"},
	)

	got := engine.Configs()
	if len(got) != 2 || got[0].Type != "SMA" || got[1].Type != "OBV" {
		t.Fatalf("unexpected configs: %+v", got)
	}
	got[0].Period = 50

	res := engine.Process(makeBar("C", 1))
	if res[0].Name != "SMA_2" {
		t.Errorf("mutating Configs() leaked into the engine: got %s", res[0].Name)
	}
}
