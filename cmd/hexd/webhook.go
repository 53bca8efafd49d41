package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

type Jar struct {
	*cookiejar.Jar
}

func NewJar() (*Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{Jar: jar}, nil
}

// Webhook POSTs step results to a configured URL so that external
// collaborators (UIs, recorders) can follow a world without polling.
// Cookies set by the receiver are retained across notifications.
type Webhook struct {
	URL   string
	Debug bool

	jar *Jar
}

func NewWebhook(rawurl string) (*Webhook, error) {
	if _, err := url.Parse(rawurl); err != nil {
		return nil, err
	}
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	return &Webhook{
		URL: rawurl,
		jar: jar,
	}, nil
}

func (h *Webhook) logf(format string, args ...interface{}) {
	if h.Debug {
		log.Printf(format, args...)
	}
}

// StepNotice is the webhook payload.
type StepNotice struct {
	Sid    string   `json:"sid"`
	World  string   `json:"world"`
	Index  int      `json:"index"`
	Logs   []string `json:"logs,omitempty"`
}

// Notify posts one step result.  Failures are logged, not returned:
// a flaky receiver must not affect stepping.
func (h *Webhook) Notify(ctx context.Context, sid, world string, index int, logs []string) {
	js, err := json.Marshal(&StepNotice{
		Sid:   sid,
		World: world,
		Index: index,
		Logs:  logs,
	})
	if err != nil {
		log.Printf("Webhook.Notify Marshal error %v", err)
		return
	}

	u, err := url.Parse(h.URL)
	if err != nil {
		log.Printf("Webhook.Notify URL error %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.URL, bytes.NewReader(js))
	if err != nil {
		log.Printf("Webhook.Notify request error %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for i, cookie := range h.jar.Cookies(u) {
		h.logf("adding cookie %d: %#v", i, cookie)
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("Webhook.Notify Do error %v", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	h.jar.SetCookies(u, resp.Cookies())
	h.logf("Webhook.Notify %s %s", resp.Status, world)
}
