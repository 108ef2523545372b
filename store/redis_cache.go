package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jiahe-site/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	cacheKey = "site_document:" + models.SiteDocumentName

	// fillAttempts bounds retries when the cached entry changes under WATCH.
	fillAttempts = 3
)

// CachedDocuments is a read-through Redis cache in front of another
// Documents. Writes go to the underlying store first and then replace the
// cached copy. The cache only ever moves forward in version, so a slow read
// cannot put back a document a write has already superseded. Redis failures
// are logged and fall through to the store.
type CachedDocuments struct {
	next   Documents
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

func NewCachedDocuments(next Documents, client *redis.Client, ttl time.Duration, log *logrus.Logger) *CachedDocuments {
	return &CachedDocuments{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedDocuments) Load(ctx context.Context) (*models.SiteDocument, error) {
	cached, err := c.cached(ctx, c.client)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil {
		c.log.Warnf("redis get %s: %v", cacheKey, err)
	}

	doc, err := c.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.fill(ctx, doc); err != nil {
		c.log.Warnf("redis fill %s: %v", cacheKey, err)
	}
	return doc, nil
}

func (c *CachedDocuments) Save(ctx context.Context, payload []byte, baseVersion int64) (int64, error) {
	version, err := c.next.Save(ctx, payload, baseVersion)
	if err != nil {
		return 0, err
	}

	doc := &models.SiteDocument{
		Name:      models.SiteDocumentName,
		Payload:   payload,
		Version:   version,
		UpdatedAt: time.Now(),
	}
	if err := c.fill(ctx, doc); err != nil {
		c.log.Warnf("redis fill %s: %v", cacheKey, err)
		if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
			c.log.Warnf("redis del %s: %v", cacheKey, err)
		}
	}
	return version, nil
}

// cached returns the cached document, or nil when there is none or it is
// unreadable.
func (c *CachedDocuments) cached(ctx context.Context, cmd redis.Cmdable) (*models.SiteDocument, error) {
	raw, err := cmd.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc models.SiteDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.log.Warnf("discarding unreadable cached site document: %v", err)
		return nil, nil
	}
	return &doc, nil
}

// fill caches doc unless the cache already holds the same or a newer
// version. The check and the write happen in one WATCH transaction.
func (c *CachedDocuments) fill(ctx context.Context, doc *models.SiteDocument) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		current, err := c.cached(ctx, tx)
		if err != nil {
			return err
		}
		if current != nil && current.Version >= doc.Version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey, encoded, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < fillAttempts; i++ {
		err = c.client.Watch(ctx, txf, cacheKey)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return err
}
