package live

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"strategylab/internal/backtest"
	"strategylab/internal/logging"
	"strategylab/internal/strategy"
	"strategylab/internal/types"
)

// Runner loads, steps and saves instances. Ticks on the same instance are
// serialized; different instances step independently.
type Runner struct {
	store  Store
	logger *logging.Logger

	mu    sync.Mutex
	locks map[string]*instanceLock
}

// instanceLock is dropped from Runner.locks when its last holder releases it
type instanceLock struct {
	sync.Mutex
	refs int
}

// NewRunner creates a runner over store
func NewRunner(store Store) *Runner {
	return &Runner{
		store:  store,
		logger: logging.NewComponentLogger("live"),
		locks:  make(map[string]*instanceLock),
	}
}

// Start validates the strategy and saves a fresh flat instance
func (r *Runner) Start(ctx context.Context, symbol, strategyName string, params strategy.Params, capital float64, costs backtest.Costs) (*State, error) {
	if _, err := strategy.New(strategyName, params); err != nil {
		return nil, err
	}
	if !(capital > 0) || math.IsInf(capital, 0) {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %v", backtest.ErrInvalidInput, capital)
	}
	if err := costs.Validate(); err != nil {
		return nil, err
	}

	state := NewState(symbol, strategyName, params, capital, costs)
	if err := r.store.Save(ctx, state); err != nil {
		return nil, err
	}
	r.logger.LogSystem("live_start", "Live instance started", map[string]interface{}{
		"instance_id": state.InstanceID,
		"symbol":      symbol,
		"strategy":    strategyName,
	})
	return state, nil
}

// Get returns the stored state of id
func (r *Runner) Get(ctx context.Context, id string) (*State, error) {
	return r.store.Load(ctx, id)
}

// Tick applies one step with the latest bar window and persists the result.
// A skipped step is not saved.
func (r *Runner) Tick(ctx context.Context, id string, bars []types.OHLCV) (*State, StepOutcome, error) {
	unlock := r.lock(id)
	defer unlock()

	state, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, StepOutcome{}, err
	}

	gen, err := strategy.New(state.Strategy, state.StrategyParams)
	if err != nil {
		return nil, StepOutcome{}, fmt.Errorf("failed to build strategy for %s: %w", id, err)
	}
	if len(bars) < gen.Lookback() {
		r.logger.Warnf("Instance %s stepped with %d bars, %s wants %d", id, len(bars), gen.Name(), gen.Lookback())
	}

	next, outcome, err := Step(*state, bars, gen)
	if err != nil {
		return nil, StepOutcome{}, err
	}
	if outcome.Action == ActionSkipped {
		return state, outcome, nil
	}

	next.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(ctx, &next); err != nil {
		return nil, StepOutcome{}, err
	}

	if outcome.Execution != nil {
		r.logger.LogTrade(next.Symbol, *outcome.Execution)
	}
	r.logger.LogLiveStep(next.InstanceID, next.Symbol, outcome.Signal, outcome.Action, next.Equity)
	return &next, outcome, nil
}

// Delete removes a stored instance
func (r *Runner) Delete(ctx context.Context, id string) error {
	unlock := r.lock(id)
	defer unlock()

	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.LogSystem("live_delete", "Live instance deleted", map[string]interface{}{"instance_id": id})
	return nil
}

// lock serializes work on id and returns the release func
func (r *Runner) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &instanceLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

// lockCount is the number of instances with a held or awaited lock
func (r *Runner) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// List returns the stored instance ids
func (r *Runner) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}
