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

package world

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// worldFile is the on-disk document: the stable snapshot keys plus
// the name, the history ring, and the cursor.  Unknown keys are
// ignored on read.
type worldFile struct {
	Name string `json:"name,omitempty"`
	*Snapshot
	History []*StepSnapshot `json:"history,omitempty"`
	Cursor  int             `json:"cursor,omitempty"`
}

// Marshal renders the world as its on-disk document.
func Marshal(w *World) ([]byte, error) {
	doc := &worldFile{
		Name:     w.Name,
		Snapshot: w.Snapshot(),
		History:  w.history.entries,
		Cursor:   w.history.cursor,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal builds a world from a document.  A missing name falls
// back to fallbackName.
func Unmarshal(bs []byte, fallbackName string, seed int64) (*World, error) {
	var doc worldFile
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, err
	}
	if doc.Snapshot == nil {
		doc.Snapshot = &Snapshot{Radius: 1}
	}
	name := doc.Name
	if name == "" {
		name = fallbackName
	}

	w, err := FromSnapshot(name, doc.Snapshot, seed)
	if err != nil {
		return nil, err
	}
	if 0 < len(doc.History) {
		w.history.entries = doc.History
		w.history.cursor = doc.Cursor
		if w.history.at(doc.Cursor) == nil {
			w.history.cursor = w.history.last()
		}
	}
	return w, nil
}

// Save writes the world to path as JSON.
func Save(w *World, path string) error {
	js, err := Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, js, 0644)
}

// Load reads a world from path.
func Load(path string, seed int64) (*World, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(bs, strings.TrimSuffix(filepath.Base(path), ".json"), seed)
}
