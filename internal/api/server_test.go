package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/waterme/internal/iconstore"
	"github.com/julianstephens/waterme/internal/models"
	"github.com/julianstephens/waterme/internal/source"
	"github.com/julianstephens/waterme/internal/storage/sqlite"
)

// Tuesday noon.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	srv    *Server
	store  *sqlite.Store
	fern   models.Reminder
	cactus models.Reminder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "waterme.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, _ := store.GetSettings()
	settings.Timezone = "UTC"
	settings.WeekStart = "monday"
	settings.ReminderHour = 18
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	f := &fixture{store: store}
	fernVessel := models.NewVessel("Fern")
	f.fern = models.NewReminder(fernVessel.ID, models.ReminderKind{Type: models.KindWater})
	if err := store.AddVessel(fernVessel, f.fern); err != nil {
		t.Fatal(err)
	}
	cactusVessel := models.NewVessel("Cactus")
	f.cactus = models.NewReminder(cactusVessel.ID, models.ReminderKind{Type: models.KindWater})
	if err := store.AddVessel(cactusVessel, f.cactus); err != nil {
		t.Fatal(err)
	}
	// due three days ago
	if err := store.AppendPerform([]string{f.cactus.ID}, testNow.AddDate(0, 0, -10)); err != nil {
		t.Fatal(err)
	}

	col := source.New(store)
	t.Cleanup(col.Close)
	f.srv = New(store, col, iconstore.New(filepath.Join(dir, "icons")),
		WithClock(func() time.Time { return testNow }))
	t.Cleanup(f.srv.Close)
	f.settle()
	return f
}

func (f *fixture) settle() {
	f.srv.col.Sync()
	f.srv.gedeg.Sync()
}

func (f *fixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil && method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeSections(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var resp struct {
		Sections []sectionDTO `json:"sections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode sections: %v (%s)", err, w.Body.String())
	}
	out := map[string][]string{}
	for _, s := range resp.Sections {
		for _, r := range s.Rows {
			out[s.Bucket] = append(out[s.Bucket], r.VesselName)
		}
	}
	return out
}

func TestHealth(t *testing.T) {
	f := setup(t)
	if w := f.do(t, http.MethodGet, "/api/health", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSections_GroupsByBucket(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/sections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decodeSections(t, w)
	if len(got["Late"]) != 1 || got["Late"][0] != "Cactus" {
		t.Errorf("Late = %v, want [Cactus]", got["Late"])
	}
	if len(got["Today"]) != 1 || got["Today"][0] != "Fern" {
		t.Errorf("Today = %v, want [Fern]", got["Today"])
	}
}

func TestPerformOne_MovesReminder(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/reminders/"+f.fern.ID+"/perform", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("perform status = %d (%s)", w.Code, w.Body.String())
	}
	f.settle()

	got := decodeSections(t, f.do(t, http.MethodGet, "/api/sections", nil))
	if len(got["Today"]) != 0 {
		t.Errorf("Today = %v, want empty", got["Today"])
	}
	if len(got["Later"]) != 1 || got["Later"][0] != "Fern" {
		t.Errorf("Later = %v, want [Fern]", got["Later"])
	}

	w = f.do(t, http.MethodGet, "/api/reminders/"+f.fern.ID, nil)
	var detail map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail["section"] != "Later" {
		t.Errorf("section = %v, want Later", detail["section"])
	}
}

func TestPerform_Errors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		want   int
	}{
		{"missing ids", http.MethodPost, "/api/perform", []byte(`{}`), http.StatusBadRequest},
		{"empty ids", http.MethodPost, "/api/perform", []byte(`{"ids":[]}`), http.StatusBadRequest},
		{"unknown id", http.MethodPost, "/api/perform", []byte(`{"ids":["nope"]}`), http.StatusNotFound},
		{"unknown reminder", http.MethodPost, "/api/reminders/nope/perform", nil, http.StatusNotFound},
		{"get unknown reminder", http.MethodGet, "/api/reminders/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := f.do(t, tt.method, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestPerformMany(t *testing.T) {
	f := setup(t)

	body, _ := json.Marshal(PerformRequest{IDs: []string{f.fern.ID, f.cactus.ID}})
	w := f.do(t, http.MethodPost, "/api/perform", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	f.settle()

	var badge struct {
		Due int `json:"due"`
	}
	if err := json.Unmarshal(f.do(t, http.MethodGet, "/api/badge", nil).Body.Bytes(), &badge); err != nil {
		t.Fatal(err)
	}
	if badge.Due != 0 {
		t.Errorf("due = %d, want 0", badge.Due)
	}
}

func TestBadgeAndPlan(t *testing.T) {
	f := setup(t)

	var badge struct {
		Badge int `json:"badge"`
		Due   int `json:"due"`
	}
	if err := json.Unmarshal(f.do(t, http.MethodGet, "/api/badge", nil).Body.Bytes(), &badge); err != nil {
		t.Fatal(err)
	}
	if badge.Due != 2 || badge.Badge != 0 {
		t.Errorf("badge = %+v, want due 2 and nothing published", badge)
	}

	var plan struct {
		Plan []planDTO `json:"plan"`
	}
	if err := json.Unmarshal(f.do(t, http.MethodGet, "/api/plan", nil).Body.Bytes(), &plan); err != nil {
		t.Fatal(err)
	}
	if len(plan.Plan) == 0 {
		t.Fatal("plan is empty")
	}
	first := plan.Plan[0]
	if first.ItemCount != 2 || first.VesselCount != 2 {
		t.Errorf("first entry = %+v", first)
	}
	if !strings.Contains(first.Body, "need attention today") {
		t.Errorf("body = %q", first.Body)
	}
}

func TestIcons(t *testing.T) {
	f := setup(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	w := f.do(t, http.MethodPut, "/api/vessels/"+f.fern.VesselID+"/icon", png)
	if w.Code != http.StatusNoContent {
		t.Fatalf("put status = %d (%s)", w.Code, w.Body.String())
	}
	w = f.do(t, http.MethodGet, "/api/vessels/"+f.fern.VesselID+"/icon", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("get = %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), png) {
		t.Error("icon bytes differ")
	}
	v, err := f.store.GetVessel(f.fern.VesselID)
	if err != nil || v.Icon.Kind != models.IconImage {
		t.Errorf("vessel icon = %+v, %v", v.Icon, err)
	}

	if w := f.do(t, http.MethodPut, "/api/vessels/"+f.fern.VesselID+"/icon", []byte("plain text")); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("non-image status = %d", w.Code)
	}
	big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, iconstore.MaxImageSize)...)
	if w := f.do(t, http.MethodPut, "/api/vessels/"+f.fern.VesselID+"/icon", big); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized status = %d", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/vessels/nope/icon", png); w.Code != http.StatusNotFound {
		t.Errorf("unknown vessel status = %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/vessels/"+f.cactus.VesselID+"/icon", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing icon status = %d", w.Code)
	}
}

func TestEvents_StreamInitialAndUpdate(t *testing.T) {
	f := setup(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	lines := bufio.NewScanner(resp.Body)
	lines.Buffer(make([]byte, 64<<10), 1<<20)

	next := func() string {
		for lines.Scan() {
			if name, ok := strings.CutPrefix(lines.Text(), "event:"); ok {
				return name
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	if got := next(); got != "initial" {
		t.Fatalf("first event = %q, want initial", got)
	}

	// wait until the stream handler is subscribed before changing anything
	deadline := time.Now().Add(2 * time.Second)
	for f.srv.events.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := f.store.AppendPerform([]string{f.fern.ID}, testNow); err != nil {
		t.Fatal(err)
	}
	if got := next(); got != "update" {
		t.Errorf("second event = %q, want update", got)
	}
}
