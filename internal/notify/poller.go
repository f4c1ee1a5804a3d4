// Package notify polls the ticket activity feed for a console session,
// raises toasts for activity newer than the session start, and tracks the
// unread indicator against a durable read watermark.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/observability"
)

// KeyLastRead is the durable storage key of the read watermark (epoch millis).
const KeyLastRead = "lastReadTime"

// ErrUnknownItem is returned by Select for an id not in the feed.
var ErrUnknownItem = errors.New("notify: unknown notification")

// Feed is the activity endpoint.
type Feed interface {
	FetchActivities(ctx context.Context) ([]domain.NotificationItem, error)
}

// Toaster shows notification toasts.
type Toaster interface {
	PushFor(message string, kind domain.ToastKind, d time.Duration) domain.Toast
}

// Storage persists the read watermark.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Navigator moves the view to a room and ticket.
type Navigator interface {
	Jump(roomID, ticketID string) error
}

// Config tunes a Poller. Zero durations and limits pick defaults.
type Config struct {
	Clock        clockwork.Clock
	Logger       zerolog.Logger
	User         domain.User
	FastInterval time.Duration // panel open
	SlowInterval time.Duration // panel closed
	ToastTTL     time.Duration
	ToastRoles   []string // lowercase; empty means every role
	Limit        int
}

// Poller is the notification state of one session.
//
// The poller is never stopped while its session lives; only the cadence
// changes with the panel. Fetch failures leave the state untouched.
type Poller struct {
	feed    Feed
	toasts  Toaster
	storage Storage
	nav     Navigator
	cfg     Config
	log     zerolog.Logger

	mu          sync.Mutex
	knownLatest time.Time
	lastRead    time.Time
	items       []domain.NotificationItem
	panelOpen   bool

	wake chan struct{}
}

// NewPoller returns a poller whose toast watermark starts at the clock's
// current time, so activity that already happened never raises a toast.
func NewPoller(feed Feed, toasts Toaster, storage Storage, nav Navigator, cfg Config) *Poller {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = 10 * time.Second
	}
	if cfg.SlowInterval <= 0 {
		cfg.SlowInterval = 60 * time.Second
	}
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = 5 * time.Second
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	return &Poller{
		feed:        feed,
		toasts:      toasts,
		storage:     storage,
		nav:         nav,
		cfg:         cfg,
		log:         cfg.Logger.With().Str("component", "notify").Logger(),
		knownLatest: cfg.Clock.Now(),
		wake:        make(chan struct{}, 1),
	}
}

// Run loads the read watermark, polls once, and keeps polling at the
// current cadence until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if err := p.LoadWatermark(ctx); err != nil {
		p.log.Warn().Err(err).Msg("read watermark unavailable")
	}
	_ = p.Poll(ctx)

	for {
		timer := p.cfg.Clock.NewTimer(p.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.wake:
			timer.Stop()
		case <-timer.Chan():
		}
		_ = p.Poll(ctx)
	}
}

// LoadWatermark reads the persisted lastReadTime.
func (p *Poller) LoadWatermark(ctx context.Context) error {
	raw, ok, err := p.storage.GetItem(ctx, KeyLastRead)
	if err != nil || !ok {
		return err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", KeyLastRead, err)
	}
	p.mu.Lock()
	p.lastRead = time.UnixMilli(ms)
	p.mu.Unlock()
	return nil
}

// Poll fetches the feed once. The feed is de-duplicated by id. New activity
// by other users raises one toast per item when the viewer's role is eligible.
func (p *Poller) Poll(ctx context.Context) error {
	feed, err := p.feed.FetchActivities(ctx)
	observability.NotificationPolls.WithLabelValues(observability.Outcome(err)).Inc()
	if err != nil {
		p.log.Warn().Err(err).Msg("activity poll failed")
		return err
	}

	items := make([]domain.NotificationItem, 0, len(feed))
	seen := make(map[string]struct{}, len(feed))
	for _, it := range feed {
		if p.cfg.User.Username != "" && domain.SameUser(it.Username, p.cfg.User.Username) {
			continue
		}
		// First copy of an id wins.
		if it.ID != "" {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedTime.After(items[j].CreatedTime) })
	if len(items) > p.cfg.Limit {
		items = items[:p.cfg.Limit]
	}

	p.mu.Lock()
	var fresh []domain.NotificationItem
	latest := p.knownLatest
	for _, it := range items {
		if it.CreatedTime.After(p.knownLatest) {
			fresh = append(fresh, it)
			if it.CreatedTime.After(latest) {
				latest = it.CreatedTime
			}
		}
	}
	p.knownLatest = latest
	p.items = items
	p.mu.Unlock()

	if !p.toastEligible() {
		return nil
	}
	// Oldest first so the queue reads chronologically.
	for i := len(fresh) - 1; i >= 0; i-- {
		p.toasts.PushFor(p.Message(fresh[i]), domain.ToastInfo, p.cfg.ToastTTL)
	}
	return nil
}

// Message renders the toast text for an activity item.
func (p *Poller) Message(it domain.NotificationItem) string {
	parts := make([]string, 0, 3)
	if it.Apartment != "" {
		parts = append(parts, "Apt "+it.Apartment)
	}
	if id := strings.TrimSpace(it.TicketType + " " + it.TicketID); id != "" {
		parts = append(parts, id)
	}
	action := it.Action
	if action == "" {
		action = it.Status
	}
	if action != "" {
		parts = append(parts, cases.Title(language.English).String(action))
	}
	if len(parts) == 0 {
		return "New activity"
	}
	return strings.Join(parts, " · ")
}

func (p *Poller) toastEligible() bool {
	if len(p.cfg.ToastRoles) == 0 {
		return true
	}
	role := strings.ToLower(strings.TrimSpace(p.cfg.User.Role))
	for _, r := range p.cfg.ToastRoles {
		if r == role {
			return true
		}
	}
	return false
}

// OpenPanel switches to the fast cadence, polls right away and marks
// everything as read.
func (p *Poller) OpenPanel(ctx context.Context) {
	now := p.cfg.Clock.Now()
	p.mu.Lock()
	p.panelOpen = true
	p.lastRead = now
	p.mu.Unlock()

	if err := p.storage.SetItem(ctx, KeyLastRead, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		p.log.Warn().Err(err).Msg("persist read watermark")
	}
	p.poke()
}

// ClosePanel switches back to the slow cadence.
func (p *Poller) ClosePanel() {
	p.mu.Lock()
	p.panelOpen = false
	p.mu.Unlock()
	p.poke()
}

func (p *Poller) poke() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// PanelOpen reports whether the panel is open.
func (p *Poller) PanelOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panelOpen
}

// Interval returns the current poll cadence.
func (p *Poller) Interval() time.Duration {
	if p.PanelOpen() {
		return p.cfg.FastInterval
	}
	return p.cfg.SlowInterval
}

// Items returns the feed, newest first.
func (p *Poller) Items() []domain.NotificationItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.NotificationItem(nil), p.items...)
}

// HasUnread reports whether the newest item is later than the read watermark.
func (p *Poller) HasUnread() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items) > 0 && p.items[0].CreatedTime.After(p.lastRead)
}

// Select jumps to the room and ticket an item refers to.
func (p *Poller) Select(id string) error {
	p.mu.Lock()
	var (
		it    domain.NotificationItem
		found bool
	)
	for _, x := range p.items {
		if x.ID == id {
			it, found = x, true
			break
		}
	}
	p.mu.Unlock()
	if !found {
		return ErrUnknownItem
	}
	return p.nav.Jump(it.Apartment, it.TicketID)
}
