// Package engine resolves economic turns for a multi-faction hex world and
// drives them on a timer.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TurnsPerYear is how many turns make one in-game year (one turn per season).
const TurnsPerYear = 4

// Engine drives the simulation forward, ending one turn per interval.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // Time between turns (default 10 seconds)

	// Callbacks, populated during setup.
	OnTurn  func(report *TurnReport) // After every settled turn
	OnYear  func(turn uint64)        // Every TurnsPerYear turns
	OnError func(err error)          // EndTurn failures; the loop keeps going

	mu      sync.Mutex
	running bool
	paused  bool
	cancel  context.CancelFunc
}

// NewEngine creates a turn driver with default settings.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:      sim,
		Interval: 10 * time.Second,
	}
}

// Run ends a turn every Interval until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.running = true
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	slog.Info("simulation engine started", "turn", e.Sim.Status().Turn, "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "turn", e.Sim.Status().Turn)
			return
		case <-ticker.C:
			if e.Paused() {
				continue
			}
			e.Step()
		}
	}
}

// Stop halts the loop started by Run.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// SetPaused pauses or resumes the timer without stopping the loop.
func (e *Engine) SetPaused(p bool) {
	e.mu.Lock()
	e.paused = p
	e.mu.Unlock()
}

// Paused reports whether turns are currently held.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Step ends exactly one turn and fires the callbacks.
func (e *Engine) Step() (*TurnReport, error) {
	report, err := e.Sim.EndTurn()
	if err != nil {
		slog.Error("end turn failed", "error", err)
		if e.OnError != nil {
			e.OnError(err)
		}
		return nil, err
	}

	if e.OnTurn != nil {
		e.OnTurn(report)
	}
	if report.Turn%TurnsPerYear == 0 && e.OnYear != nil {
		e.OnYear(report.Turn)
	}
	return report, nil
}

// TurnLabel returns a human-readable calendar label for a turn number.
func TurnLabel(turn uint64) string {
	seasonNames := [TurnsPerYear]string{"Spring", "Summer", "Autumn", "Winter"}
	season := turn % TurnsPerYear
	year := turn/TurnsPerYear + 1
	return fmt.Sprintf("%s, Year %d", seasonNames[season], year)
}
