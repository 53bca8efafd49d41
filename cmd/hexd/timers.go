package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
)

// Stepper is what a timer fires: step the named world in the named
// session.
type Stepper func(ctx context.Context, sid, world string) error

var (
	Exists   = errors.New("id exists")
	NotFound = errors.New("not found")
)

type TimerEntry struct {
	Id    string `json:"id"`
	Sid   string `json:"sid"`
	World string `json:"world,omitempty"`

	// At is the next firing time.
	At time.Time `json:"at"`

	// Cron is set for recurring timers.
	Cron string `json:"cron,omitempty"`

	ctl chan bool
}

// Timers drives scheduled stepping: one-shot after a duration, or
// recurring on a cron expression.
type Timers struct {
	Errors chan interface{} `json:"-"`

	sync.Mutex

	timers map[string]*TimerEntry
	ctl    chan bool
	step   Stepper
}

func NewTimers(step Stepper) *Timers {
	return &Timers{
		timers: make(map[string]*TimerEntry, 32),
		step:   step,
		ctl:    make(chan bool),
	}
}

// Add schedules a one-shot step after d.
func (ts *Timers) Add(ctx context.Context, id, sid, world string, d time.Duration) error {
	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[id]; have {
		return Exists
	}

	te := &TimerEntry{
		Id:    id,
		Sid:   sid,
		World: world,
		At:    time.Now().UTC().Add(d),
		ctl:   make(chan bool),
	}
	ts.timers[id] = te

	go func() {
		timer := time.NewTimer(te.At.Sub(time.Now()))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			ts.rem(id)
		case <-te.ctl:
			// We only get here via a Rem() call.
		case <-ts.ctl:
			ts.rem(id)
		case <-timer.C:
			if err := ts.step(ctx, te.Sid, te.World); err != nil {
				ts.err(fmt.Errorf("timer %s step error %v", id, err))
			}
			ts.Lock()
			delete(ts.timers, id)
			ts.Unlock()
		}
	}()

	return nil
}

// AddCron schedules recurring steps on a cron expression.
func (ts *Timers) AddCron(ctx context.Context, id, sid, world, expr string) error {
	cron, err := cronexpr.Parse(expr)
	if err != nil {
		return fmt.Errorf("bad cron expression %q: %s", expr, err)
	}

	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[id]; have {
		return Exists
	}

	te := &TimerEntry{
		Id:    id,
		Sid:   sid,
		World: world,
		At:    cron.Next(time.Now()),
		Cron:  expr,
		ctl:   make(chan bool),
	}
	if te.At.IsZero() {
		return fmt.Errorf("cron expression %q never fires", expr)
	}
	ts.timers[id] = te

	go func() {
		at := te.At
		for {
			timer := time.NewTimer(at.Sub(time.Now()))
			select {
			case <-ctx.Done():
				timer.Stop()
				ts.rem(id)
				return
			case <-te.ctl:
				timer.Stop()
				return
			case <-ts.ctl:
				timer.Stop()
				ts.rem(id)
				return
			case <-timer.C:
				if err := ts.step(ctx, te.Sid, te.World); err != nil {
					ts.err(fmt.Errorf("timer %s step error %v", id, err))
				}
			}

			if at = cron.Next(time.Now()); at.IsZero() {
				ts.Lock()
				delete(ts.timers, id)
				ts.Unlock()
				return
			}
			ts.Lock()
			te.At = at
			ts.Unlock()
		}
	}()

	return nil
}

// rem removes without complaint; used by the timer goroutines.
func (ts *Timers) rem(id string) {
	ts.Lock()
	delete(ts.timers, id)
	ts.Unlock()
}

// Rem cancels a timer.
func (ts *Timers) Rem(ctx context.Context, id string) error {
	ts.Lock()
	defer ts.Unlock()

	te, have := ts.timers[id]
	if !have {
		return NotFound
	}
	delete(ts.timers, id)
	close(te.ctl)
	return nil
}

// Entries lists the scheduled timers.
func (ts *Timers) Entries() []*TimerEntry {
	ts.Lock()
	defer ts.Unlock()
	acc := make([]*TimerEntry, 0, len(ts.timers))
	for _, te := range ts.timers {
		acc = append(acc, te)
	}
	return acc
}

func (ts *Timers) Shutdown() error {
	close(ts.ctl)
	return nil
}

func (ts *Timers) err(err error) {
	if ts.Errors != nil {
		select {
		case ts.Errors <- err:
			return
		default:
		}
	}
	log.Println(err)
}
