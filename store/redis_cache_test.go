package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"jiahe-site/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const testCacheTTL = time.Minute

// interleavedDocuments runs afterLoad once, between reading the document and
// returning it, to put a write in the middle of a cache fill.
type interleavedDocuments struct {
	Documents
	afterLoad func()
}

func (d *interleavedDocuments) Load(ctx context.Context) (*models.SiteDocument, error) {
	doc, err := d.Documents.Load(ctx)
	if hook := d.afterLoad; hook != nil {
		d.afterLoad = nil
		hook()
	}
	return doc, err
}

func newTestCache(t *testing.T, next Documents, mr *miniredis.Miniredis) *CachedDocuments {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewCachedDocuments(next, client, testCacheTTL, log)
}

func encodedSiteData(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(fakeSiteData())
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	mr := miniredis.RunT(t)
	cache := newTestCache(t, repo, mr)

	if _, err := repo.Save(ctx, encodedSiteData(t), 0); err != nil {
		t.Fatal(err)
	}

	doc, err := cache.Load(ctx)
	if err != nil || doc.Version != 1 {
		t.Fatalf("Load = %+v, %v", doc, err)
	}
	if !mr.Exists(cacheKey) {
		t.Fatal("Load did not fill the cache")
	}

	// a write that bypasses the cache stays invisible until the entry expires
	if _, err := repo.Save(ctx, encodedSiteData(t), 1); err != nil {
		t.Fatal(err)
	}
	if doc, _ := cache.Load(ctx); doc.Version != 1 {
		t.Errorf("cached version = %d; want 1", doc.Version)
	}

	mr.FastForward(testCacheTTL + time.Second)
	if doc, _ := cache.Load(ctx); doc.Version != 2 {
		t.Errorf("version after expiry = %d; want 2", doc.Version)
	}
}

func TestCacheSaveReplacesEntry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	mr := miniredis.RunT(t)
	cache := newTestCache(t, repo, mr)

	if _, err := cache.Save(ctx, encodedSiteData(t), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(ctx); err != nil {
		t.Fatal(err)
	}

	payload := encodedSiteData(t)
	version, err := cache.Save(ctx, payload, 1)
	if err != nil || version != 2 {
		t.Fatalf("Save = %d, %v", version, err)
	}

	doc, err := cache.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != 2 || string(doc.Payload) != string(payload) {
		t.Errorf("Load after Save = version %d", doc.Version)
	}
	if raw, _ := mr.Get(cacheKey); !strings.Contains(raw, `"version":2`) {
		t.Errorf("cached entry = %s", raw)
	}

	if _, err := cache.Save(ctx, payload, 1); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale Save through the cache: err = %v", err)
	}
}

func TestCacheOlderReadCannotReplaceNewerWrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	mr := miniredis.RunT(t)

	if _, err := repo.Save(ctx, encodedSiteData(t), 0); err != nil {
		t.Fatal(err)
	}

	docs := &interleavedDocuments{Documents: repo}
	cache := newTestCache(t, docs, mr)

	// the read has fetched version 1 when a write commits version 2
	docs.afterLoad = func() {
		if _, err := cache.Save(ctx, encodedSiteData(t), 1); err != nil {
			t.Errorf("interleaved Save: %v", err)
		}
	}
	if doc, err := cache.Load(ctx); err != nil || doc.Version != 1 {
		t.Fatalf("Load = %+v, %v", doc, err)
	}

	doc, err := cache.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != 2 {
		t.Errorf("cache holds version %d after a newer write; want 2", doc.Version)
	}
}

func TestCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	cache := newTestCache(t, repo, mr)
	mr.Close()

	version, err := cache.Save(ctx, encodedSiteData(t), 0)
	if err != nil || version != 1 {
		t.Fatalf("Save = %d, %v", version, err)
	}
	doc, err := cache.Load(ctx)
	if err != nil || doc.Version != 1 {
		t.Errorf("Load = %+v, %v", doc, err)
	}
}
