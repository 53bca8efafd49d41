package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Comcast/hexi/world"
	. "github.com/Comcast/hexi/util/testutil"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jsccast/yaml"
)

// Service hosts sessions of worlds behind the HTTP, WebSocket, and
// MQTT surfaces.  Per-session operations serialize on the session
// mutex; a step runs to completion before the next operation is
// admitted.
type Service struct {
	Tracing bool

	// DefaultSeed seeds the RNG of newly created worlds.
	DefaultSeed int64

	// Errors receives background persistence errors when set.
	// Timer and MQTT errors are only logged.
	Errors chan interface{}

	ops chan interface{}

	mu       sync.Mutex
	sessions map[string]*Session

	store   *Storage
	tmplDir string
	timers  *Timers
	webhook *Webhook
}

func NewService(ctx context.Context, dbFile, tmplDir string) (*Service, error) {
	var store *Storage
	if dbFile != "" {
		var err error
		if store, err = NewStorage(dbFile); err != nil {
			return nil, err
		}
		if err = store.Open(ctx); err != nil {
			return nil, err
		}
		go func() {
			<-ctx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				log.Printf("Service.store.Close error %s", err)
			}
		}()
	}

	s := &Service{
		sessions: make(map[string]*Session, 8),
		store:    store,
		tmplDir:  tmplDir,
	}
	s.timers = NewTimers(func(ctx context.Context, sid, name string) error {
		sess, err := s.Session(ctx, sid)
		if err != nil {
			return err
		}
		_, err = sess.Step(ctx, name, nil)
		return err
	})

	return s, nil
}

func (s *Service) trf(format string, args ...interface{}) {
	if !s.Tracing {
		return
	}
	log.Printf("trace "+format, args...)
}

// op forwards an operation record to the firehose (if any).
func (s *Service) op(ctx context.Context, x interface{}) {
	if s.ops != nil {
		select {
		case s.ops <- Copy(x):
		default:
			log.Printf("Service ops chan blocked")
		}
	}
}

func (s *Service) err(err error) {
	if s.Errors != nil {
		select {
		case s.Errors <- err:
			return
		default:
		}
	}
	log.Println(err)
}

// NewSession creates a session with a fresh opaque id.
func (s *Service) NewSession(ctx context.Context) (*Session, error) {
	sid := uuid.New().String()
	return s.Session(ctx, sid)
}

// Session returns the session with the given id, creating it if
// needed.  Worlds persisted under that id are loaded back.
func (s *Service) Session(ctx context.Context, sid string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, have := s.sessions[sid]; have {
		return sess, nil
	}

	sess := &Session{
		Id:     sid,
		svc:    s,
		worlds: make(map[string]*world.World, 8),
	}

	if s.store != nil {
		if err := s.store.EnsureSession(ctx, sid); err != nil {
			return nil, err
		}
		ws, current, err := s.store.LoadSession(ctx, sid, s.DefaultSeed)
		if err != nil {
			return nil, err
		}
		for _, w := range ws {
			sess.worlds[w.Name] = w
		}
		if _, have := sess.worlds[current]; have {
			sess.current = current
		}
	}

	s.sessions[sid] = sess
	return sess, nil
}

// EndSession drops a session and its persisted worlds.
func (s *Service) EndSession(ctx context.Context, sid string) error {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	if s.store != nil {
		return s.store.RemSession(ctx, sid)
	}
	return nil
}

// WorldTemplate is an on-disk world spec: the shape a world should
// start with.
type WorldTemplate struct {
	Name   string `yaml:"name"`
	Radius int    `yaml:"radius"`
	Rules  string `yaml:"rules"`

	Cells []struct {
		Q     int    `yaml:"q"`
		R     int    `yaml:"r"`
		State string `yaml:"state"`
		Dir   int    `yaml:"dir"`
	} `yaml:"cells"`
}

// GetTemplate reads a world template from the template directory.
func (s *Service) GetTemplate(name string) (*WorldTemplate, error) {
	if s.tmplDir == "" {
		return nil, fmt.Errorf("no template directory configured")
	}
	bs, err := os.ReadFile(s.tmplDir + "/" + name + ".yaml")
	if err != nil {
		return nil, err
	}
	var t WorldTemplate
	if err = yaml.Unmarshal(bs, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// WorldMeta is the listing form of a world.
type WorldMeta struct {
	Name        string `json:"name"`
	Radius      int    `json:"radius"`
	ActiveCount int    `json:"active_count"`
	Current     bool   `json:"current,omitempty"`
}

// Session is a named set of worlds with a current selection.
type Session struct {
	sync.Mutex

	Id string

	svc     *Service
	worlds  map[string]*world.World
	current string
}

// persist writes a world to storage.  Best effort: persistence
// problems are reported but do not fail the operation.
func (sess *Session) persist(ctx context.Context, w *world.World) {
	if sess.svc.store == nil {
		return
	}
	if err := sess.svc.store.WriteWorld(ctx, sess.Id, w); err != nil {
		sess.svc.err(fmt.Errorf("persist world %q: %w", w.Name, err))
	}
}

func (sess *Session) persistState(ctx context.Context) {
	if sess.svc.store == nil {
		return
	}
	if err := sess.svc.store.WriteState(ctx, sess.Id, sess.current); err != nil {
		sess.svc.err(fmt.Errorf("persist session state: %w", err))
	}
}

// Create makes a world with a unique name and selects it.
func (sess *Session) Create(ctx context.Context, name string, radius int, rules string) (*world.World, error) {
	sess.Lock()
	defer sess.Unlock()

	if name == "" {
		return nil, fmt.Errorf("world name required")
	}
	if _, have := sess.worlds[name]; have {
		return nil, &world.ConflictError{Name: name}
	}
	w, err := world.New(name, radius, rules, sess.svc.DefaultSeed)
	if err != nil {
		return nil, err
	}
	sess.worlds[name] = w
	sess.current = name
	sess.persist(ctx, w)
	sess.persistState(ctx)
	return w, nil
}

// CreateFromTemplate makes a world from an on-disk template.
func (sess *Session) CreateFromTemplate(ctx context.Context, name, template string) (*world.World, error) {
	t, err := sess.svc.GetTemplate(template)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = t.Name
	}
	w, err := sess.Create(ctx, name, t.Radius, t.Rules)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	for _, c := range t.Cells {
		if err := w.SetCell(c.Q, c.R, c.State, c.Dir); err != nil {
			return nil, err
		}
	}
	sess.persist(ctx, w)
	return w, nil
}

// List returns metadata for every world, sorted by name.
func (sess *Session) List() []WorldMeta {
	sess.Lock()
	defer sess.Unlock()

	metas := make([]WorldMeta, 0, len(sess.worlds))
	for _, w := range sess.worlds {
		metas = append(metas, WorldMeta{
			Name:        w.Name,
			Radius:      w.Radius,
			ActiveCount: w.ActiveCount(),
			Current:     w.Name == sess.current,
		})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas
}

// World resolves a name to a world.  The empty name means the
// current world.
func (sess *Session) World(name string) (*world.World, error) {
	sess.Lock()
	defer sess.Unlock()
	return sess.worldLocked(name)
}

func (sess *Session) worldLocked(name string) (*world.World, error) {
	if name == "" {
		name = sess.current
	}
	if name == "" {
		return nil, &world.NotFoundError{What: "current world"}
	}
	w, have := sess.worlds[name]
	if !have {
		return nil, &world.NotFoundError{What: "world", Name: name}
	}
	return w, nil
}

// Select makes a world current.
func (sess *Session) Select(ctx context.Context, name string) error {
	sess.Lock()
	defer sess.Unlock()
	if _, have := sess.worlds[name]; !have {
		return &world.NotFoundError{What: "world", Name: name}
	}
	sess.current = name
	sess.persistState(ctx)
	return nil
}

// Rename changes a world's unique name.
func (sess *Session) Rename(ctx context.Context, name, to string) error {
	sess.Lock()
	defer sess.Unlock()

	if to == "" {
		return fmt.Errorf("world name required")
	}
	if _, have := sess.worlds[to]; have {
		return &world.ConflictError{Name: to}
	}
	w, err := sess.worldLocked(name)
	if err != nil {
		return err
	}

	old := w.Name
	delete(sess.worlds, old)
	w.Rename(to)
	sess.worlds[to] = w
	if sess.current == old {
		sess.current = to
	}
	if sess.svc.store != nil {
		if err := sess.svc.store.RemWorld(ctx, sess.Id, old); err != nil {
			sess.svc.err(fmt.Errorf("remove world %q: %w", old, err))
		}
	}
	sess.persist(ctx, w)
	sess.persistState(ctx)
	return nil
}

// Delete removes a world.
func (sess *Session) Delete(ctx context.Context, name string) error {
	sess.Lock()
	defer sess.Unlock()

	w, err := sess.worldLocked(name)
	if err != nil {
		return err
	}
	delete(sess.worlds, w.Name)
	if sess.current == w.Name {
		sess.current = ""
	}
	if sess.svc.store != nil {
		if err := sess.svc.store.RemWorld(ctx, sess.Id, w.Name); err != nil {
			sess.svc.err(fmt.Errorf("remove world %q: %w", w.Name, err))
		}
	}
	sess.persistState(ctx)
	return nil
}

// Step advances a world one generation.  When rules is non-nil, that
// text is used (and retained if it parses).  The step log is
// returned.
func (sess *Session) Step(ctx context.Context, name string, rules *string) ([]string, error) {
	sess.Lock()
	defer sess.Unlock()

	w, err := sess.worldLocked(name)
	if err != nil {
		return nil, err
	}

	var logs []string
	if rules != nil {
		logs = w.StepText(*rules)
	} else {
		logs = w.Step()
	}
	sess.persist(ctx, w)

	sess.svc.trf("session %s world %s stepped to %s active cells",
		sess.Id, w.Name, humanize.Comma(int64(w.ActiveCount())))

	sess.svc.op(ctx, map[string]interface{}{
		"stepped": map[string]interface{}{
			"sid":    sess.Id,
			"world":  w.Name,
			"index":  w.HistoryIndex(),
			"active": w.ActiveCount(),
		},
	})
	if sess.svc.webhook != nil {
		go sess.svc.webhook.Notify(ctx, sess.Id, w.Name, w.HistoryIndex(), logs)
	}

	return logs, nil
}

// Mutate runs f on a world under the session lock and persists the
// result.  All the small editing operations go through here.
func (sess *Session) Mutate(ctx context.Context, name string, f func(*world.World) error) error {
	sess.Lock()
	defer sess.Unlock()

	w, err := sess.worldLocked(name)
	if err != nil {
		return err
	}
	if err := f(w); err != nil {
		return err
	}
	sess.persist(ctx, w)
	return nil
}

// View runs f on a world under the session lock without persisting.
func (sess *Session) View(name string, f func(*world.World) error) error {
	sess.Lock()
	defer sess.Unlock()

	w, err := sess.worldLocked(name)
	if err != nil {
		return err
	}
	return f(w)
}
