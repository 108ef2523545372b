package sitedata

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"jiahe-site/auth"
	"jiahe-site/events"
	"jiahe-site/models"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMinLoadingDelay = 800 * time.Millisecond
	maxAlerts              = 50

	// ConnectivityHint is shown when the store gave no usable answer.
	ConnectivityHint = "cannot save: check that the store endpoint exists and its data directory is writable"
	// UnloadedHint is shown when the store holds content that hydration
	// failed to load, so saving would overwrite it with the defaults.
	UnloadedHint = "cannot save: the stored content was never loaded, reload it from the server first"
)

// RemoteStore is the read-all / write-all document store the site is
// persisted to.
type RemoteStore interface {
	Fetch(ctx context.Context) (*models.SiteData, int64, error)
	Replace(ctx context.Context, data *models.SiteData, baseVersion int64) (*models.StoreResult, error)
}

// Alert is a failed save the admin has to see.
type Alert struct {
	Message string    `json:"message"`
	Fields  []string  `json:"fields,omitempty"`
	At      time.Time `json:"at"`
}

type Options struct {
	// MinLoadingDelay is the shortest time Hydrate holds the loading state.
	MinLoadingDelay time.Duration
	Publisher       events.Publisher
	Log             *logrus.Logger
}

// Controller owns the live site data. It is the only writer: readers get
// immutable snapshots, every change swaps in a new value.
type Controller struct {
	store     RemoteStore
	publisher events.Publisher
	log       *logrus.Logger
	delay     time.Duration

	current atomic.Pointer[models.SiteData]
	version atomic.Int64

	// mergeMu serializes read-merge-swap. pushMu orders pushes so each one
	// carries the version returned by the previous.
	mergeMu sync.Mutex
	pushMu  sync.Mutex

	hydrateOnce sync.Once
	ready       chan struct{}

	// unsynced is set while the live model was not loaded from the store.
	unsynced atomic.Bool

	alertMu sync.Mutex
	alerts  []Alert
}

func NewController(store RemoteStore, opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.LogPublisher{Log: opts.Log}
	}
	if opts.MinLoadingDelay < 0 {
		opts.MinLoadingDelay = 0
	}

	c := &Controller{
		store:     store,
		publisher: opts.Publisher,
		log:       opts.Log,
		delay:     opts.MinLoadingDelay,
		ready:     make(chan struct{}),
	}
	c.current.Store(models.Defaults())
	return c
}

// Hydrate loads the stored document once. Any failure keeps the defaults
// and is only logged. Ready is closed no earlier than MinLoadingDelay after
// the call, however fast the store answers.
func (c *Controller) Hydrate(ctx context.Context) {
	c.hydrateOnce.Do(func() {
		defer close(c.ready)

		gate := time.NewTimer(c.delay)
		defer gate.Stop()

		data, version, err := c.store.Fetch(ctx)
		if err != nil {
			c.log.WithError(err).Warn("hydration failed, serving default site data")
			c.unsynced.Store(true)
		} else {
			c.upgradeCredentials(data)
			c.current.Store(data)
			c.version.Store(version)
			c.log.WithFields(logrus.Fields{
				"version": version,
				"news":    len(data.News),
				"cases":   len(data.Cases),
			}).Info("site data hydrated")
		}

		select {
		case <-gate.C:
		case <-ctx.Done():
		}
	})
}

// Ready is closed once hydration has finished, successfully or not.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

func (c *Controller) IsReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Snapshot returns the live model. Callers must not modify it.
func (c *Controller) Snapshot() *models.SiteData {
	return c.current.Load()
}

// Version is the store version the live model was last synchronized with.
func (c *Controller) Version() int64 {
	return c.version.Load()
}

// Admin returns the credentials currently in effect.
func (c *Controller) Admin() models.AdminConfig {
	return c.Snapshot().Admin
}

// ApplyPatch merges patch into the live model, publishes the result at once
// and then pushes it. A failed push leaves the merged model live and is
// returned as an alert.
func (c *Controller) ApplyPatch(ctx context.Context, patch models.Patch) (*models.SiteData, *Alert) {
	return c.Update(ctx, func(*models.SiteData) models.Patch { return patch })
}

// Update is ApplyPatch for patches computed from the live model, such as a
// collection with one item added. build runs under the merge lock, so
// concurrent callers each see the result of the previous one. An empty
// patch changes nothing and is not pushed.
func (c *Controller) Update(ctx context.Context, build func(current *models.SiteData) models.Patch) (*models.SiteData, *Alert) {
	c.mergeMu.Lock()
	current := c.Snapshot()
	patch := build(current)
	if patch.IsEmpty() {
		c.mergeMu.Unlock()
		return current, nil
	}
	next := models.Merge(current, patch)
	c.current.Store(next)
	c.mergeMu.Unlock()

	return next, c.push(ctx, patch.Fields())
}

// Push sends model as the complete document.
func (c *Controller) Push(ctx context.Context, model *models.SiteData) *Alert {
	return c.send(ctx, model, nil)
}

// push sends whatever is live when its turn comes, so a queued push never
// overwrites a newer local merge with an older one.
func (c *Controller) push(ctx context.Context, fields []string) *Alert {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	return c.sendLocked(ctx, c.Snapshot(), fields)
}

func (c *Controller) send(ctx context.Context, model *models.SiteData, fields []string) *Alert {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	return c.sendLocked(ctx, model, fields)
}

func (c *Controller) sendLocked(ctx context.Context, model *models.SiteData, fields []string) *Alert {
	// After a failed hydration the version is 0, which writes unconditionally.
	// Only go ahead if the store still has nothing readable.
	if c.unsynced.Load() {
		if _, _, err := c.store.Fetch(ctx); err == nil {
			c.log.Warn("store holds content that was never loaded, push withheld")
			return c.alert(UnloadedHint, fields)
		}
	}

	result, err := c.store.Replace(ctx, model, c.version.Load())
	if err != nil {
		c.log.WithError(err).Error("push to store failed")
		return c.alert(ConnectivityHint, fields)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = ConnectivityHint
		}
		c.log.WithField("message", result.Message).Error("store rejected push")
		return c.alert("server save failed: "+msg, fields)
	}

	if result.Version > 0 {
		c.version.Store(result.Version)
	}
	c.unsynced.Store(false)

	event := events.NewContentUpdated(result.Version, fields)
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.log.WithError(err).Warn("publish content event failed")
	}
	return nil
}

// Reconcile drops local state and adopts the stored document. Unlike
// Hydrate, failures are returned to the caller.
func (c *Controller) Reconcile(ctx context.Context) error {
	data, version, err := c.store.Fetch(ctx)
	if err != nil {
		return err
	}
	c.upgradeCredentials(data)

	c.mergeMu.Lock()
	c.current.Store(data)
	c.version.Store(version)
	c.unsynced.Store(false)
	c.mergeMu.Unlock()

	c.log.WithField("version", version).Info("site data reconciled with store")
	return nil
}

// upgradeCredentials hashes a legacy plaintext admin password in place. The
// hash reaches the store with the next push.
func (c *Controller) upgradeCredentials(data *models.SiteData) {
	changed, err := auth.UpgradeLegacyPassword(&data.Admin)
	if err != nil {
		c.log.WithError(err).Error("hash legacy admin password")
		return
	}
	if changed {
		c.log.Warn("admin password was stored in plaintext; it is hashed now and saved with the next change")
	}
}

func (c *Controller) alert(msg string, fields []string) *Alert {
	a := Alert{Message: msg, Fields: fields, At: time.Now()}

	c.alertMu.Lock()
	defer c.alertMu.Unlock()

	c.alerts = append(c.alerts, a)
	if len(c.alerts) > maxAlerts {
		c.alerts = c.alerts[len(c.alerts)-maxAlerts:]
	}
	return &a
}

// Alerts returns the recorded alerts, oldest first.
func (c *Controller) Alerts() []Alert {
	c.alertMu.Lock()
	defer c.alertMu.Unlock()
	out := make([]Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// TakeAlerts returns the recorded alerts and clears them.
func (c *Controller) TakeAlerts() []Alert {
	c.alertMu.Lock()
	defer c.alertMu.Unlock()
	out := c.alerts
	c.alerts = nil
	return out
}
