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
	"log"
	"time"

	"github.com/Comcast/hexi/world"

	bolt "go.etcd.io/bbolt"
)

// stateBucket maps session ids to their selected world name.  Session
// ids are uuids, so the name cannot collide with one.
var stateBucket = []byte("state")

// Storage persists sessions in bolt: one bucket per session id, one
// key per world.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// NewStorage takes a filename and returns a Storage.
func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("BoltDB "+format, args...)
	}
}

// EnsureSession creates the session's bucket if needed.
func (s *Storage) EnsureSession(ctx context.Context, sid string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sid))
		return err
	})
}

// RemSession drops the session's bucket and state.
func (s *Storage) RemSession(ctx context.Context, sid string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(sid)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		if b := tx.Bucket(stateBucket); b != nil {
			return b.Delete([]byte(sid))
		}
		return nil
	})
}

// LoadSession reads the session's worlds and its selected world name.
func (s *Storage) LoadSession(ctx context.Context, sid string, seed int64) ([]*world.World, string, error) {
	if s == nil {
		return nil, "", nil
	}
	var (
		ws      []*world.World
		current string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sid))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for name, bs := c.First(); name != nil; name, bs = c.Next() {
			w, err := world.Unmarshal(bs, string(name), seed)
			if err != nil {
				return err
			}
			s.logf("LoadSession %s world %s", sid, w.Name)
			ws = append(ws, w)
		}
		if b := tx.Bucket(stateBucket); b != nil {
			current = string(b.Get([]byte(sid)))
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logf("LoadSession %s found %d worlds", sid, len(ws))

	return ws, current, nil
}

// WriteWorld persists one world.
func (s *Storage) WriteWorld(ctx context.Context, sid string, w *world.World) error {
	if s == nil {
		return nil
	}
	js, err := world.Marshal(w)
	if err != nil {
		return err
	}
	s.logf("WriteWorld %s %s (%d bytes)", sid, w.Name, len(js))
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(sid))
		if err != nil {
			return err
		}
		return b.Put([]byte(w.Name), js)
	})
}

// RemWorld deletes one world.
func (s *Storage) RemWorld(ctx context.Context, sid, name string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sid))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

// WriteState records the session's selected world.
func (s *Storage) WriteState(ctx context.Context, sid, current string) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return err
		}
		if current == "" {
			return b.Delete([]byte(sid))
		}
		return b.Put([]byte(sid), []byte(current))
	})
}
