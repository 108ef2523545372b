package sitedata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"jiahe-site/auth"
	"jiahe-site/events"
	"jiahe-site/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory RemoteStore.
type fakeStore struct {
	mu sync.Mutex

	data     *models.SiteData
	version  int64
	fetchErr error
	putErr   error
	reject   string

	puts []*models.SiteData
}

func (f *fakeStore) Fetch(ctx context.Context) (*models.SiteData, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	return f.data.Clone(), f.version, nil
}

func (f *fakeStore) Replace(ctx context.Context, data *models.SiteData, base int64) (*models.StoreResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, data)
	if f.putErr != nil {
		return nil, f.putErr
	}
	if f.reject != "" {
		return &models.StoreResult{Message: f.reject}, nil
	}
	f.data = data.Clone()
	f.version++
	return &models.StoreResult{Success: true, Message: "saved", Version: f.version}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newController(store RemoteStore, pub events.Publisher) *Controller {
	return NewController(store, Options{Publisher: pub, Log: quietLogger()})
}

func TestHydrateFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport error", errors.New("dial tcp: connection refused")},
		{"non-2xx", errors.New("store GET: status 500")},
		{"missing news", errors.New("store document is not site content: missing news")},
	}
	for _, tt := range tests {
		c := newController(&fakeStore{fetchErr: tt.err}, nil)
		c.Hydrate(context.Background())

		if !c.IsReady() {
			t.Errorf("%s: not ready after Hydrate", tt.name)
		}
		if !reflect.DeepEqual(c.Snapshot(), models.Defaults()) {
			t.Errorf("%s: live model differs from defaults", tt.name)
		}
		if c.Version() != 0 {
			t.Errorf("%s: version = %d; want 0", tt.name, c.Version())
		}
	}
}

func TestHydrateAdoptsStoredDocument(t *testing.T) {
	stored := models.Defaults()
	stored.CompanyIntro = gofakeit.Paragraph(1, 3, 10, "\n")
	stored.News = []models.NewsItem{{ID: gofakeit.UUID(), Title: gofakeit.Sentence(3)}}
	stored.Products = nil

	c := newController(&fakeStore{data: stored, version: 7}, nil)
	c.Hydrate(context.Background())

	if !reflect.DeepEqual(c.Snapshot(), stored) {
		t.Error("live model differs from the stored document")
	}
	if c.Version() != 7 {
		t.Errorf("version = %d; want 7", c.Version())
	}
}

func TestHydrateHoldsLoadingDelay(t *testing.T) {
	c := NewController(&fakeStore{data: models.Defaults()}, Options{
		MinLoadingDelay: 80 * time.Millisecond,
		Log:             quietLogger(),
	})

	start := time.Now()
	go c.Hydrate(context.Background())

	select {
	case <-c.Ready():
		t.Fatal("ready before the loading delay passed")
	default:
	}

	<-c.Ready()
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("ready after %v; want at least 80ms", elapsed)
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	store := &fakeStore{data: models.Defaults()}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	intro := "local"
	c.ApplyPatch(context.Background(), models.Patch{CompanyIntro: &intro})
	c.Hydrate(context.Background())

	if c.Snapshot().CompanyIntro != "local" {
		t.Error("second Hydrate replaced the live model")
	}
}

func TestHydrateUpgradesLegacyPassword(t *testing.T) {
	stored := models.Defaults()
	stored.Admin = models.AdminConfig{Username: "admin", PasswordHash: "plain-secret"}

	c := newController(&fakeStore{data: stored}, nil)
	c.Hydrate(context.Background())

	admin := c.Admin()
	if admin.PasswordHash == "plain-secret" || !auth.IsHashed(admin.PasswordHash) {
		t.Fatalf("password hash = %q; want a bcrypt hash", admin.PasswordHash)
	}
	if err := auth.VerifyCredentials(admin, "admin", "plain-secret"); err != nil {
		t.Errorf("upgraded credentials rejected: %v", err)
	}
}

func TestApplyPatchPushesWholeModel(t *testing.T) {
	store := &fakeStore{data: models.Defaults(), version: 3}
	pub := &recordingPublisher{}
	c := newController(store, pub)
	c.Hydrate(context.Background())

	contact := models.ContactInfo{Address: gofakeit.Address().Address, Phone: gofakeit.Phone(), Email: gofakeit.Email()}
	next, alert := c.ApplyPatch(context.Background(), models.Patch{Contact: &contact})
	if alert != nil {
		t.Fatalf("unexpected alert %q", alert.Message)
	}

	want := models.Defaults()
	want.Contact = contact
	if !reflect.DeepEqual(next, want) || !reflect.DeepEqual(c.Snapshot(), want) {
		t.Error("patch changed more than contact")
	}
	if len(store.puts) != 1 || !reflect.DeepEqual(store.puts[0], want) {
		t.Error("push did not carry the complete merged model")
	}
	if c.Version() != 4 {
		t.Errorf("version = %d; want 4", c.Version())
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.ContentUpdated || pub.events[0].Fields[0] != "contact" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestApplyPatchKeepsLocalStateWhenPushFails(t *testing.T) {
	tests := []struct {
		name      string
		store     *fakeStore
		wantAlert string
	}{
		{
			name:      "transport error",
			store:     &fakeStore{data: models.Defaults(), putErr: errors.New("connection reset")},
			wantAlert: ConnectivityHint,
		},
		{
			name:      "rejected",
			store:     &fakeStore{data: models.Defaults(), reject: "disk full"},
			wantAlert: "server save failed: disk full",
		},
	}
	for _, tt := range tests {
		pub := &recordingPublisher{}
		c := newController(tt.store, pub)
		c.Hydrate(context.Background())

		intro := gofakeit.Sentence(6)
		_, alert := c.ApplyPatch(context.Background(), models.Patch{CompanyIntro: &intro})

		if alert == nil || alert.Message != tt.wantAlert {
			t.Errorf("%s: alert = %+v; want %q", tt.name, alert, tt.wantAlert)
		}
		if c.Snapshot().CompanyIntro != intro {
			t.Errorf("%s: local change was rolled back", tt.name)
		}
		if got := c.Alerts(); len(got) != 1 || got[0].Message != tt.wantAlert {
			t.Errorf("%s: Alerts() = %+v", tt.name, got)
		}
		if len(pub.events) != 0 {
			t.Errorf("%s: event published for a failed push", tt.name)
		}
	}
}

func TestApplyEmptyPatchDoesNothing(t *testing.T) {
	store := &fakeStore{data: models.Defaults()}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	before := c.Snapshot()
	after, alert := c.ApplyPatch(context.Background(), models.Patch{})
	if alert != nil || after != before || len(store.puts) != 0 {
		t.Error("empty patch was applied or pushed")
	}
}

func TestConcurrentPatchesAreAllKept(t *testing.T) {
	store := &fakeStore{data: models.Defaults()}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tags := []string{fmt.Sprint("tag", i)}
			c.ApplyPatch(context.Background(), models.Patch{IndustryTags: &tags})
		}(i)
	}
	intro := "kept"
	c.ApplyPatch(context.Background(), models.Patch{CompanyIntro: &intro})
	wg.Wait()

	if c.Snapshot().CompanyIntro != "kept" {
		t.Error("a concurrent merge lost the intro change")
	}
	if len(c.Alerts()) != 0 {
		t.Errorf("serialized pushes conflicted: %+v", c.Alerts())
	}
	if !reflect.DeepEqual(store.data, c.Snapshot()) {
		t.Error("store and live model diverged after all pushes succeeded")
	}
}

func TestConcurrentUpdatesSeeEachOther(t *testing.T) {
	store := &fakeStore{data: models.Defaults()}
	c := newController(store, nil)
	c.Hydrate(context.Background())
	before := len(c.Snapshot().News)

	const writers = 30
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Update(context.Background(), func(current *models.SiteData) models.Patch {
				news := append(slices.Clone(current.News), models.NewsItem{ID: fmt.Sprint("u", i)})
				return models.Patch{News: &news}
			})
		}(i)
	}
	wg.Wait()

	if n := len(c.Snapshot().News); n != before+writers {
		t.Errorf("news = %d; want %d", n, before+writers)
	}
	if !reflect.DeepEqual(store.data, c.Snapshot()) {
		t.Error("store and live model diverged")
	}
}

func TestUpdateWithEmptyPatchIsNotPushed(t *testing.T) {
	store := &fakeStore{data: models.Defaults()}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	c.Update(context.Background(), func(*models.SiteData) models.Patch { return models.Patch{} })
	if len(store.puts) != 0 {
		t.Error("empty update was pushed")
	}
}

func TestUnloadedContentIsNotOverwritten(t *testing.T) {
	stored := models.Defaults()
	stored.CompanyIntro = "stored intro"
	store := &fakeStore{data: stored, version: 7, fetchErr: errors.New("connection refused")}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	// the store comes back after startup
	store.mu.Lock()
	store.fetchErr = nil
	store.mu.Unlock()

	tags := []string{"new"}
	_, alert := c.ApplyPatch(context.Background(), models.Patch{IndustryTags: &tags})
	if alert == nil || alert.Message != UnloadedHint {
		t.Fatalf("alert = %+v; want %q", alert, UnloadedHint)
	}
	if len(store.puts) != 0 || store.data.CompanyIntro != "stored intro" {
		t.Error("defaults were pushed over content that was never loaded")
	}
	if got := c.Snapshot().IndustryTags; len(got) != 1 || got[0] != "new" {
		t.Error("local change was rolled back")
	}

	if err := c.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, alert := c.ApplyPatch(context.Background(), models.Patch{IndustryTags: &tags}); alert != nil {
		t.Fatalf("push after reconcile: %q", alert.Message)
	}
	if len(store.puts) != 1 || store.data.CompanyIntro != "stored intro" {
		t.Error("push after reconcile did not build on the stored content")
	}
}

func TestFirstSaveToEmptyStore(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("no site content stored")}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	intro := gofakeit.Sentence(5)
	if _, alert := c.ApplyPatch(context.Background(), models.Patch{CompanyIntro: &intro}); alert != nil {
		t.Fatalf("alert = %q", alert.Message)
	}
	if len(store.puts) != 1 || c.Version() != 1 {
		t.Errorf("puts = %d, version = %d", len(store.puts), c.Version())
	}
}

func TestReconcileAdoptsStore(t *testing.T) {
	store := &fakeStore{data: models.Defaults(), putErr: errors.New("offline")}
	c := newController(store, nil)
	c.Hydrate(context.Background())

	intro := "unsaved"
	c.ApplyPatch(context.Background(), models.Patch{CompanyIntro: &intro})

	if err := c.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Snapshot().CompanyIntro == "unsaved" {
		t.Error("Reconcile kept unsaved local state")
	}

	store.fetchErr = errors.New("offline")
	if err := c.Reconcile(context.Background()); err == nil {
		t.Error("Reconcile hid a fetch error")
	}
}

func TestTakeAlertsClears(t *testing.T) {
	c := newController(&fakeStore{data: models.Defaults(), putErr: errors.New("x")}, nil)
	for i := 0; i < maxAlerts+5; i++ {
		c.Push(context.Background(), c.Snapshot())
	}
	if n := len(c.Alerts()); n != maxAlerts {
		t.Errorf("kept %d alerts; want %d", n, maxAlerts)
	}
	if n := len(c.TakeAlerts()); n != maxAlerts {
		t.Errorf("TakeAlerts returned %d", n)
	}
	if n := len(c.Alerts()); n != 0 {
		t.Errorf("%d alerts left after TakeAlerts", n)
	}
}
