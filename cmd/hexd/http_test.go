package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPService(t *testing.T) {
	s, ctx := testService(t)

	mux := http.NewServeMux()
	if err := s.HTTPService(ctx, mux); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	post := func(path string, body []byte) []byte {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("POST %s: %s", path, resp.Status)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	var created struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(post("/api/sessions", nil), &created); err != nil {
		t.Fatal(err)
	}
	if created.Sid == "" {
		t.Fatal("no session id")
	}

	doOp := func(op *SOp) *SOp {
		t.Helper()
		js, err := json.Marshal(op)
		if err != nil {
			t.Fatal(err)
		}
		var out SOp
		if err := json.Unmarshal(post("/api/op", js), &out); err != nil {
			t.Fatal(err)
		}
		return &out
	}

	out := doOp(&SOp{WOp: &WOp{
		Sid: created.Sid, Name: "w",
		Create: &CreateOp{Radius: 2, Rules: "a => b"},
	}})
	if out.Err != "" {
		t.Fatalf("create err %q", out.Err)
	}

	doOp(&SOp{WOp: &WOp{
		Sid: created.Sid, Name: "w",
		SetCell: &CellWrite{Q: 0, R: 0, State: "a"},
	}})

	out = doOp(&SOp{WOp: &WOp{Sid: created.Sid, Name: "w", Step: &StepOp{}}})
	if out.Err != "" || len(out.WOp.Logs) == 0 {
		t.Fatalf("step err=%q logs=%d", out.Err, len(out.WOp.Logs))
	}

	out = doOp(&SOp{WOp: &WOp{Sid: created.Sid, Name: "w", Snapshot: true}})
	if out.WOp.Snap == nil || len(out.WOp.Snap.Cells) != 1 {
		t.Fatalf("snapshot %v", out.WOp.Snap)
	}
	if out.WOp.Snap.Cells[0].State != "b" {
		t.Fatalf("cell %v", out.WOp.Snap.Cells[0])
	}

	// A bad op reports through err, not a transport failure.
	out = doOp(&SOp{WOp: &WOp{Sid: created.Sid, Name: "missing", Meta: true}})
	if out.Err == "" {
		t.Fatal("expected err on missing world")
	}

	// List worlds via the REST convenience.
	resp, err := http.Get(srv.URL + "/api/sessions/" + created.Sid)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var metas []WorldMeta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || metas[0].Name != "w" {
		t.Fatalf("metas %v", metas)
	}
}

func TestWebhookNotify(t *testing.T) {
	got := make(chan *StepNotice, 1)
	recv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n StepNotice
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			t.Errorf("decode: %v", err)
		}
		select {
		case got <- &n:
		default:
		}
	}))
	defer recv.Close()

	h, err := NewWebhook(recv.URL)
	if err != nil {
		t.Fatal(err)
	}
	h.Notify(context.Background(), "s1", "w1", 3, []string{"x"})

	select {
	case n := <-got:
		if n.Sid != "s1" || n.World != "w1" || n.Index != 3 {
			t.Fatalf("notice %+v", n)
		}
	default:
		t.Fatal("no notification received")
	}
}
