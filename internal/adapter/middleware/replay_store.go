package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	replayKeyPrefix = "ledger:replay:"
)

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// replayEntry is what a mutating ledger call leaves behind in Redis: first a
// claim while the handler runs, then the response to hand back on retries.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e replayEntry) replayable() bool { return !e.InProgress && e.Code != 0 && len(e.Body) > 0 }

type replayStore struct {
	rdb *redis.Client
	// how long a claim survives a crashed handler
	claimTTL time.Duration
	// how long a finished response is replayed
	ttl time.Duration
}

// key scopes a request id to the route template and the actor, so the same id
// sent to deposit and to process never collides.
func (s replayStore) key(method, route, actorID, requestID string) string {
	return replayKeyPrefix + strings.ToLower(method) + ":" + route + ":" + actorID + ":" + requestID
}

func (s replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.claimTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decode replay entry: %w", err)
	}
	return e, nil
}

func (s replayStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

// release drops a claim so the caller may retry with the same request id.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// fingerprint covers the concrete path as well as the body. Routes like
// process carry their target only in the path, so one request id reused for
// another withdrawal must not match.
func fingerprint(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func nowUTC() time.Time { return time.Now().UTC() }

func validRequestID(id string) bool {
	id = strings.TrimSpace(id)
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339(Nano)
// with an explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}
