package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*miniredis.Miniredis, replayStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, replayStore{rdb: rdb, claimTTL: claimTTL, ttl: 5 * time.Second}
}

func Test_fingerprint(t *testing.T) {
	data := []byte(`{"amount":"750"}`)
	sum := sha256.Sum256(append([]byte("/wallets/w1/deposits\x00"), data...))
	if got, want := fingerprint("/wallets/w1/deposits", data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("fingerprint mismatch: got %s want %s", got, want)
	}
	if fingerprint("/withdrawals/w1/process", nil) == fingerprint("/withdrawals/w2/process", nil) {
		t.Fatalf("different paths must not share a fingerprint")
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_replayStore_key(t *testing.T) {
	var s replayStore
	actor, req := strings.Repeat("b", 32), strings.Repeat("a", 32)
	k := s.key("POST", "/withdrawals/:request_id/process", actor, req)
	if want := "ledger:replay:post:/withdrawals/:request_id/process:" + actor + ":" + req; k != want {
		t.Fatalf("key = %q, want %q", k, want)
	}
	if s.key("POST", "/wallets/:investor_id/deposits", actor, req) == k {
		t.Fatalf("different routes must not share a key")
	}
}

func Test_validRequestID(t *testing.T) {
	for _, s := range []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", // uuid v4
		strings.Repeat("a", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88",
	} {
		if !validRequestID(s) {
			t.Fatalf("validRequestID should accept %q", s)
		}
	}
	for _, s := range []string{
		"",
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
		"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", // version 9
	} {
		if validRequestID(s) {
			t.Fatalf("validRequestID should reject %q", s)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	sec := time.Now().UTC().Unix()
	ms := time.Now().UTC().UnixMilli()
	cases := []struct {
		raw  string
		want time.Time
	}{
		{strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC()},
		{strconv.FormatInt(ms, 10), time.UnixMilli(ms).UTC()},
		{"2025-09-05T10:00:00+07:00", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)},
		{"2025-09-05T03:00:00Z", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)},
		{"2025-09-05T03:00:00.250Z", time.Date(2025, 9, 5, 3, 0, 0, 250e6, time.UTC)},
	}
	for _, c := range cases {
		got, err := parseRequestAt(c.raw)
		if err != nil {
			t.Fatalf("parseRequestAt(%q): %v", c.raw, err)
		}
		if !got.Equal(c.want) || got.Location() != time.UTC {
			t.Fatalf("parseRequestAt(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "1736123456abc"} {
		if _, err := parseRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func Test_replayStore_ClaimLoadFinish(t *testing.T) {
	mr, s := newStore(t)
	ctx := context.Background()
	key := s.key("POST", "/wallets/:investor_id/deposits", strings.Repeat("b", 32), strings.Repeat("a", 32))
	claim := replayEntry{
		InProgress:  true,
		Fingerprint: fingerprint("/wallets/w1/deposits", []byte(`{"amount":"1"}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := s.claim(ctx, key, claim)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > claimTTL {
		t.Fatalf("claim TTL = %v", ttl)
	}
	if ok, err := s.claim(ctx, key, claim); err != nil || ok {
		t.Fatalf("second claim must lose: ok=%v err=%v", ok, err)
	}

	got, err := s.load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.InProgress || got.replayable() || got.Fingerprint != claim.Fingerprint {
		t.Fatalf("loaded claim mismatch: %+v", got)
	}

	final := claim
	final.InProgress = false
	final.Code = 201
	final.ContentType = "application/json"
	final.Body = []byte(`{"ok":true}`)
	if err := s.finish(ctx, key, final); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL = %v", ttl)
	}
	got, err = s.load(ctx, key)
	if err != nil || !got.replayable() || string(got.Body) != `{"ok":true}` {
		t.Fatalf("final entry mismatch: %+v err=%v", got, err)
	}

	mr.FastForward(6 * time.Second)
	if _, err := s.load(ctx, key); !errors.Is(err, redis.Nil) {
		t.Fatalf("entry should expire, got %v", err)
	}
}

func Test_replayStore_ReleaseAndCorruptEntry(t *testing.T) {
	mr, s := newStore(t)
	ctx := context.Background()
	key := s.key("POST", "/withdrawals/:request_id/process", strings.Repeat("b", 32), strings.Repeat("c", 32))

	if ok, _ := s.claim(ctx, key, replayEntry{InProgress: true}); !ok {
		t.Fatalf("claim failed")
	}
	if err := s.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("released claim still present")
	}

	if err := mr.Set(key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.load(ctx, key); err == nil || errors.Is(err, redis.Nil) {
		t.Fatalf("corrupt entry should surface a decode error, got %v", err)
	}
}
