/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Comcast/hexi/match"
	"github.com/Comcast/hexi/world"
	. "github.com/Comcast/hexi/util/testutil"
)

// SOp is a Service Operation.
//
// Only one of the fields should have a value.
type SOp struct {
	// NewSession creates a session with a fresh id.
	NewSession *NewSessionOp `json:"newSession,omitempty"`

	// EndSession destroys a session.
	EndSession *EndSessionOp `json:"endSession,omitempty"`

	// WOp gives a world operation.
	WOp *WOp `json:"wop,omitempty"`

	// Timer schedules or cancels automatic stepping.
	Timer *TimerOp `json:"timer,omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty"`
}

// erred is a utility function to return values to assign to operation
// Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

func (o *SOp) Do(ctx context.Context, s *Service) error {
	s.op(ctx, map[string]interface{}{
		"do": o,
	})

	var err error
	switch {
	case o.NewSession != nil:
		err = o.NewSession.Do(ctx, s)
	case o.EndSession != nil:
		err = o.EndSession.Do(ctx, s)
	case o.WOp != nil:
		err = o.WOp.Do(ctx, s)
	case o.Timer != nil:
		err = o.Timer.Do(ctx, s)
	default:
		err = fmt.Errorf("not implemented: %s", JS(o))
	}

	if err != nil && o.Error == nil {
		o.Error, o.Err = erred(err)
	}

	s.op(ctx, map[string]interface{}{
		"did": o,
	})

	return o.Error
}

type NewSessionOp struct {
	// Sid is the resulting session id.
	Sid string `json:"sid,omitempty"`
}

func (o *NewSessionOp) Do(ctx context.Context, s *Service) error {
	sess, err := s.NewSession(ctx)
	if err != nil {
		return err
	}
	o.Sid = sess.Id
	return nil
}

type EndSessionOp struct {
	Sid string `json:"sid"`
}

func (o *EndSessionOp) Do(ctx context.Context, s *Service) error {
	return s.EndSession(ctx, o.Sid)
}

// CreateOp makes a world, either explicitly or from an on-disk
// template.
type CreateOp struct {
	Radius   int    `json:"radius,omitempty"`
	Rules    string `json:"rules,omitempty"`
	Template string `json:"template,omitempty"`
}

type CoordRef struct {
	Q int `json:"q"`
	R int `json:"r"`
}

type CellWrite struct {
	Q     int    `json:"q"`
	R     int    `json:"r"`
	State string `json:"state"`
	Dir   int    `json:"dir,omitempty"`
}

type RandomizeOp struct {
	States []string `json:"states"`
	P      float64  `json:"p"`
}

type NoiseOp struct {
	States    []string `json:"states"`
	Threshold float64  `json:"threshold"`
	Scale     float64  `json:"scale"`
	Seed      int64    `json:"seed"`
}

type StepOp struct {
	// Rules, when given, is used (and retained if it parses).
	Rules *string `json:"rules,omitempty"`
}

// WOp is a world operation within a session.
//
// In normal use, only one command field should be given.  Name names
// the target world; the empty name means the session's current
// world.
type WOp struct {
	Sid  string `json:"sid"`
	Name string `json:"name,omitempty"`

	Create    *CreateOp    `json:"create,omitempty"`
	List      bool         `json:"list,omitempty"`
	Select    bool         `json:"select,omitempty"`
	Rename    string       `json:"rename,omitempty"`
	Delete    bool         `json:"delete,omitempty"`
	Meta      bool         `json:"meta,omitempty"`
	SetRules  *string      `json:"setRules,omitempty"`
	GetCell   *CoordRef    `json:"getCell,omitempty"`
	SetCell   *CellWrite   `json:"setCell,omitempty"`
	Toggle    *CoordRef    `json:"toggle,omitempty"`
	Clear     bool         `json:"clear,omitempty"`
	Randomize *RandomizeOp `json:"randomize,omitempty"`
	Noise     *NoiseOp     `json:"noise,omitempty"`
	Step      *StepOp      `json:"step,omitempty"`
	History   bool         `json:"history,omitempty"`
	At        *int         `json:"at,omitempty"`
	Snapshot  bool         `json:"snapshot,omitempty"`
	Prev      bool         `json:"prev,omitempty"`
	Next      bool         `json:"next,omitempty"`
	Go        *int         `json:"go,omitempty"`
	Save      string       `json:"save,omitempty"`
	Load      string       `json:"load,omitempty"`

	// Results.
	Worlds []WorldMeta         `json:"worlds,omitempty"`
	World  *WorldMeta          `json:"world,omitempty"`
	Cell   *match.Cell         `json:"cell,omitempty"`
	Logs   []string            `json:"logs,omitempty"`
	Items  []world.HistoryItem `json:"items,omitempty"`
	Cells  []world.CellEntry   `json:"cells,omitempty"`
	Snap   *world.Snapshot     `json:"snap,omitempty"`
	Index  *int                `json:"index,omitempty"`
}

func (o *WOp) Do(ctx context.Context, s *Service) error {
	sess, err := s.Session(ctx, o.Sid)
	if err != nil {
		return err
	}

	meta := func(w *world.World) *WorldMeta {
		return &WorldMeta{
			Name:        w.Name,
			Radius:      w.Radius,
			ActiveCount: w.ActiveCount(),
		}
	}

	switch {
	case o.Create != nil:
		var w *world.World
		if o.Create.Template != "" {
			w, err = sess.CreateFromTemplate(ctx, o.Name, o.Create.Template)
		} else {
			w, err = sess.Create(ctx, o.Name, o.Create.Radius, o.Create.Rules)
		}
		if err == nil {
			o.World = meta(w)
		}
		return err

	case o.List:
		o.Worlds = sess.List()
		return nil

	case o.Select:
		return sess.Select(ctx, o.Name)

	case o.Rename != "":
		return sess.Rename(ctx, o.Name, o.Rename)

	case o.Delete:
		return sess.Delete(ctx, o.Name)

	case o.Meta:
		return sess.View(o.Name, func(w *world.World) error {
			o.World = meta(w)
			return nil
		})

	case o.SetRules != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.SetRules(*o.SetRules)
		})

	case o.GetCell != nil:
		return sess.View(o.Name, func(w *world.World) error {
			c := w.Cell(o.GetCell.Q, o.GetCell.R)
			o.Cell = &c
			return nil
		})

	case o.SetCell != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.SetCell(o.SetCell.Q, o.SetCell.R, o.SetCell.State, o.SetCell.Dir)
		})

	case o.Toggle != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.Toggle(o.Toggle.Q, o.Toggle.R)
		})

	case o.Clear:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			w.Clear()
			return nil
		})

	case o.Randomize != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			w.Randomize(o.Randomize.States, o.Randomize.P)
			return nil
		})

	case o.Noise != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			w.SeedNoise(o.Noise.States, o.Noise.Threshold, o.Noise.Scale, o.Noise.Seed)
			return nil
		})

	case o.Step != nil:
		o.Logs, err = sess.Step(ctx, o.Name, o.Step.Rules)
		return err

	case o.History:
		return sess.View(o.Name, func(w *world.World) error {
			o.Items = w.History()
			i := w.HistoryIndex()
			o.Index = &i
			return nil
		})

	case o.At != nil:
		return sess.View(o.Name, func(w *world.World) error {
			o.Cells = w.HistoryCells(*o.At)
			o.Logs = w.HistoryLogs(*o.At)
			return nil
		})

	case o.Snapshot:
		return sess.View(o.Name, func(w *world.World) error {
			o.Snap = w.Snapshot()
			return nil
		})

	case o.Prev:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.Prev()
		})

	case o.Next:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.Next()
		})

	case o.Go != nil:
		return sess.Mutate(ctx, o.Name, func(w *world.World) error {
			return w.Go(*o.Go)
		})

	case o.Save != "":
		return sess.View(o.Name, func(w *world.World) error {
			return world.Save(w, o.Save)
		})

	case o.Load != "":
		w, err := world.Load(o.Load, s.DefaultSeed)
		if err != nil {
			return err
		}
		sess.Lock()
		defer sess.Unlock()
		if _, have := sess.worlds[w.Name]; have {
			return &world.ConflictError{Name: w.Name}
		}
		sess.worlds[w.Name] = w
		sess.current = w.Name
		sess.persist(ctx, w)
		sess.persistState(ctx)
		o.World = meta(w)
		return nil
	}

	return fmt.Errorf("not implemented: %s", JS(o))
}

// TimerOp schedules (or cancels) automatic stepping of a world.
type TimerOp struct {
	Id    string `json:"id"`
	Sid   string `json:"sid,omitempty"`
	World string `json:"world,omitempty"`

	// In is a duration for a one-shot step, e.g. "30s".
	In string `json:"in,omitempty"`

	// Cron is a cron expression for recurring steps.
	Cron string `json:"cron,omitempty"`

	// Rem cancels the timer with Id.
	Rem bool `json:"rem,omitempty"`
}

func (o *TimerOp) Do(ctx context.Context, s *Service) error {
	if o.Rem {
		return s.timers.Rem(ctx, o.Id)
	}
	if o.Cron != "" {
		return s.timers.AddCron(ctx, o.Id, o.Sid, o.World, o.Cron)
	}
	d, err := time.ParseDuration(o.In)
	if err != nil {
		return fmt.Errorf("bad duration %q: %s", o.In, err)
	}
	return s.timers.Add(ctx, o.Id, o.Sid, o.World, d)
}
