package introspect

import (
	"encoding/base64"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Response observers scan each network response body traversing a page.
// Observer state is local to the single task driving that page; results
// are combined at the fan-in join, never shared across running pages.

// accountObserver watches the primary account page for the service code
// (first match wins) and profile GUIDs (all matches, deduplicated).
type accountObserver struct {
	mu       sync.Mutex
	code     string
	guidSet  map[string]struct{}
	guids    []string // discovery order
	codeSeen chan struct{}
}

func newAccountObserver() *accountObserver {
	return &accountObserver{
		guidSet:  make(map[string]struct{}),
		codeSeen: make(chan struct{}),
	}
}

// attach registers the observer on the page. Must be called before
// navigation so no early response is missed.
func (o *accountObserver) attach(page *rod.Page) {
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if body := responseBody(page, e.RequestID); body != "" {
			o.scan(body)
		}
	})()
}

// scan inspects one response body.
func (o *accountObserver) scan(body string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.code == "" {
		if m := reServiceCode.FindStringSubmatch(body); m != nil {
			o.code = m[1]
			close(o.codeSeen)
		}
	}
	for _, m := range reProfileGUID.FindAllStringSubmatch(body, -1) {
		guid := m[1]
		if _, seen := o.guidSet[guid]; seen {
			continue
		}
		o.guidSet[guid] = struct{}{}
		o.guids = append(o.guids, guid)
	}
}

// snapshot returns the captured code and the GUIDs in discovery order.
func (o *accountObserver) snapshot() (string, []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	guids := make([]string, len(o.guids))
	copy(guids, o.guids)
	return o.code, guids
}

// profileObserver watches a viewing-history page for the profile display
// name (first match wins) and activity timestamps (all matches).
type profileObserver struct {
	mu    sync.Mutex
	name  string
	dates []int64
}

func newProfileObserver() *profileObserver {
	return &profileObserver{}
}

func (o *profileObserver) attach(page *rod.Page) {
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if body := responseBody(page, e.RequestID); body != "" {
			o.scan(body)
		}
	})()
}

func (o *profileObserver) scan(body string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.name == "" {
		if m := reProfileName.FindStringSubmatch(body); m != nil {
			o.name = decodeProfileName(m[1])
		}
	}
	for _, m := range reActivityDate.FindAllStringSubmatch(body, -1) {
		if ms, ok := parseMillis(m[1]); ok {
			o.dates = append(o.dates, ms)
		}
	}
}

func (o *profileObserver) snapshot() (string, []int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	dates := make([]int64, len(o.dates))
	copy(dates, o.dates)
	return o.name, dates
}

// responseBody fetches a response body over CDP, decoding base64 payloads.
// Bodies that are gone by the time we ask (cancelled, evicted) yield "".
func responseBody(page *rod.Page, id proto.NetworkRequestID) string {
	m, err := proto.NetworkGetResponseBody{RequestID: id}.Call(page)
	if err != nil {
		return ""
	}
	if m.Base64Encoded {
		raw, decErr := base64.StdEncoding.DecodeString(m.Body)
		if decErr != nil {
			return ""
		}
		return string(raw)
	}
	return m.Body
}
