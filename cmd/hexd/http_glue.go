package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// HTTPService wires the HTTP API:
//
//	POST /api/op               one SOp in, the completed SOp out
//	POST /api/sessions         create a session
//	GET  /api/sessions/{sid}   list the session's worlds
//	GET  /healthz
//
// Everything the richer surfaces can do goes through /api/op; the
// REST-ish routes are conveniences for simple clients.
func (s *Service) HTTPService(ctx context.Context, mux *http.ServeMux) error {

	respond := func(w http.ResponseWriter, x interface{}) {
		w.Header().Set("Content-Type", "application/json")
		js, err := json.Marshal(x)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(js)
	}

	mux.HandleFunc("/api/op", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		bs, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var op SOp
		if err := json.Unmarshal(bs, &op); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := op.Do(r.Context(), s); err != nil {
			// The error also rides along in op.Err.
			s.trf("HTTPService op error %v", err)
		}
		respond(w, &op)
	})

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		sess, err := s.NewSession(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respond(w, map[string]string{"sid": sess.Id})
	})

	mux.HandleFunc("/api/sessions/", func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
		if sid == "" || strings.Contains(sid, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case "GET":
			sess, err := s.Session(r.Context(), sid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			respond(w, sess.List())
		case "DELETE":
			if err := s.EndSession(r.Context(), sid); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			respond(w, map[string]bool{"ok": true})
		default:
			http.Error(w, "GET or DELETE", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return nil
}
