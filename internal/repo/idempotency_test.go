package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/rental-console/internal/domain"
)

func TestGetIdempotency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []domain.Idempotency{
		{ID: "live", UserID: "alice", SessionID: "s1", Key: "k1", TicketID: "T-1", Status: 201, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: "old", UserID: "alice", SessionID: "s1", Key: "k2", TicketID: "T-2", Status: 201, CreatedAt: now, ExpiresAt: now.Add(-time.Second)},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := GetIdempotency(ctx, db, ReplayKey{"alice", "s1", "k1"}, now)
	if err != nil || rec.TicketID != "T-1" || rec.Status != 201 {
		t.Fatalf("live record = (%+v, %v)", rec, err)
	}

	for name, k := range map[string]ReplayKey{
		"expired":       {"alice", "s1", "k2"},
		"missing":       {"alice", "s1", "nope"},
		"other session": {"alice", "s2", "k1"},
		"other user":    {"bob", "s1", "k1"},
		"blank session": {"alice", "  ", "k1"},
	} {
		if rec, err := GetIdempotency(ctx, db, k, now); rec != nil || !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: got (%+v, %v); want ErrNotFound", name, rec, err)
		}
	}
}

func TestCreateIdempotency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	k := ReplayKey{"alice", "s9", "k9"}

	rec, err := CreateIdempotency(ctx, db, k, "T-9", 201, now, 90*time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" || rec.TicketID != "T-9" || !rec.ExpiresAt.Equal(now.Add(90*time.Minute)) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got, err := GetIdempotency(ctx, db, k, now.Add(time.Hour)); err != nil || got.ID != rec.ID {
		t.Fatalf("readback = (%+v, %v)", got, err)
	}
	if _, err := GetIdempotency(ctx, db, k, now.Add(90*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record should expire at its deadline, err=%v", err)
	}

	if _, err := CreateIdempotency(ctx, db, k, "T-10", 201, now, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second create err = %v; want ErrDuplicate", err)
	}
	if _, err := CreateIdempotency(ctx, db, ReplayKey{UserID: "alice", SessionID: "s9"}, "T-11", 201, now, time.Hour); err == nil {
		t.Fatalf("blank key accepted")
	}
}

func TestCreateIdempotency_MissingTable(t *testing.T) {
	db := openMemory(t)
	_, err := CreateIdempotency(context.Background(), db, ReplayKey{"u", "s", "k"}, "T-1", 201, time.Now(), time.Minute)
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v; want a plain database error", err)
	}
}

func TestPurgeIdempotency(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, ttl := range []time.Duration{-time.Minute, 0, time.Hour} {
		k := ReplayKey{"u", "s", string(rune('a' + i))}
		if _, err := CreateIdempotency(ctx, db, k, "T-1", 201, now, ttl); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	n, err := PurgeIdempotency(ctx, db, now)
	if err != nil || n != 2 {
		t.Fatalf("PurgeIdempotency = (%d, %v); want (2, nil)", n, err)
	}
	if _, err := GetIdempotency(ctx, db, ReplayKey{"u", "s", "c"}, now); err != nil {
		t.Fatalf("live record should survive: %v", err)
	}
}
