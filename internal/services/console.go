package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/rental-console/internal/config"
	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/observability"
	"github.com/tbourn/rental-console/internal/recordstore"
	"github.com/tbourn/rental-console/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Records defines the record-store contract required by console sessions.
// *recordstore.Client implements it.
type Records interface {
	FetchApartmentData(ctx context.Context) ([]domain.Room, error)
	FetchTickets(ctx context.Context, start, end string) ([]domain.Ticket, error)
	FetchTicketsByRoom(ctx context.Context, apartmentID string) ([]domain.Ticket, error)
	FetchParkingTickets(ctx context.Context) ([]domain.Ticket, error)
	FetchOwnerManagementParking(ctx context.Context) ([]domain.Ticket, error)
	FetchParkingHistory(ctx context.Context, ticketID, ticketType, title string) ([]domain.ParkingLogEntry, error)

	UpdateTicket(ctx context.Context, teableID string, req recordstore.UpdateRequest) error
	CreateTicket(ctx context.Context, req recordstore.CreateRequest) (domain.Ticket, error)
	UpdateGuestStatus(ctx context.Context, recordID, status, ticketType string) error
	UpdateLinkedRecord(ctx context.Context, recordID, ticketType string, fields map[string]any) error
	UploadAttachment(ctx context.Context, name string, file io.Reader, recordID, ticketType string) error
	CreateParkingLog(ctx context.Context, entry domain.ParkingLogEntry) error

	FetchActivities(ctx context.Context) ([]domain.NotificationItem, error)
}

// Stores hands out the storage namespaces a session persists into: session
// scope (cache slots, cleared when the session ends) and durable scope per
// username (the read watermark).
type Stores struct {
	Session func(sessionID string) repo.Storage
	Durable func(username string) repo.Storage
}

// SQLStores keeps both scopes in the SQLite storage table.
func SQLStores(db *gorm.DB) Stores {
	return Stores{
		Session: func(id string) repo.Storage { return repo.NewSQLStorage(db, domain.ScopeSession, id) },
		Durable: func(user string) repo.Storage { return repo.NewSQLStorage(db, domain.ScopeDurable, user) },
	}
}

// RedisStores keeps session scope in Redis with a TTL and durable scope in
// SQLite.
func RedisStores(client redis.UniversalClient, ttl time.Duration, db *gorm.DB) Stores {
	return Stores{
		Session: func(id string) repo.Storage { return repo.NewRedisStorage(client, id, ttl) },
		Durable: func(user string) repo.Storage { return repo.NewSQLStorage(db, domain.ScopeDurable, user) },
	}
}

// Options configures a Manager.
type Options struct {
	Sync config.SyncConfig

	// DB stores idempotency records and is purged by the janitor. Nil
	// disables both.
	DB             *gorm.DB
	IdempotencyTTL time.Duration

	// IdleTTL ends sessions nobody touched for this long. Zero keeps them
	// until they are ended explicitly.
	IdleTTL time.Duration

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Manager owns every open console session.
//
// This type is safe for concurrent use.
type Manager struct {
	records Records
	stores  Stores
	opts    Options
	clock   clockwork.Clock
	log     zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager constructs a Manager with defaults for unset timings.
func NewManager(records Records, stores Stores, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	s := &opts.Sync
	if s.CacheTTL <= 0 {
		s.CacheTTL = 2 * time.Minute
	}
	if s.MutationToastTTL <= 0 {
		s.MutationToastTTL = 3 * time.Second
	}
	if s.NotifyToastTTL <= 0 {
		s.NotifyToastTTL = 5 * time.Second
	}
	return &Manager{
		records:  records,
		stores:   stores,
		opts:     opts,
		clock:    opts.Clock,
		log:      opts.Logger.With().Str("component", "console").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for user with the browser at location (a query
// string). The selection in location is applied as soon as the data it
// refers to has loaded.
func (m *Manager) Open(ctx context.Context, user domain.User, location string) (*Session, error) {
	tr := otel.Tracer("services/Console")
	ctx, span := tr.Start(ctx, "Open",
		trace.WithAttributes(attribute.String("user.name", user.Username)),
	)
	defer span.End()

	user.Username = strings.TrimSpace(user.Username)
	user.Role = strings.TrimSpace(user.Role)
	if user.Username == "" {
		return nil, ErrInvalidUser
	}

	s := newSession(ctx, m, user, location)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	observability.SessionsActive.Inc()

	s.log.Info().Str("location", location).Msg("session opened")
	return s, nil
}

// Get returns the session id and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// End stops the session's timers and clears its session-scoped storage.
// The durable read watermark is kept.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	observability.SessionsActive.Dec()

	s.stop()
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clear session storage")
	}
	s.log.Info().Msg("session ended")
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown ends every open session.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		_ = m.End(ctx, id)
	}
}

// Sweep ends sessions idle for longer than IdleTTL and purges expired
// idempotency records and orphaned session storage. It returns the number of
// sessions ended.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.clock.Now()
	ended := 0
	if ttl := m.opts.IdleTTL; ttl > 0 {
		m.mu.RLock()
		var idle []string
		for id, s := range m.sessions {
			if now.Sub(s.lastSeen()) > ttl {
				idle = append(idle, id)
			}
		}
		m.mu.RUnlock()
		for _, id := range idle {
			if m.End(ctx, id) == nil {
				ended++
			}
		}
	}

	if db := m.opts.DB; db != nil {
		if n, err := repo.PurgeIdempotency(ctx, db, now); err != nil {
			m.log.Warn().Err(err).Msg("purge idempotency records")
		} else if n > 0 {
			m.log.Debug().Int64("rows", n).Msg("purged idempotency records")
		}
		if ttl := m.opts.IdleTTL; ttl > 0 {
			if n, err := repo.PurgeStaleSessions(ctx, db, now.Add(-ttl)); err != nil {
				m.log.Warn().Err(err).Msg("purge stale session storage")
			} else if n > 0 {
				m.log.Debug().Int64("rows", n).Msg("purged stale session storage")
			}
		}
	}
	return ended
}

// RunJanitor calls Sweep every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := m.clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			if n := m.Sweep(ctx); n > 0 {
				m.log.Info().Int("sessions", n).Msg("ended idle sessions")
			}
		}
	}
}
