package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
)

type stubCounter struct {
	count       int
	err         error
	calls       int
	lastUser    string
	lastSince   time.Time
	hadDeadline bool
}

func (s *stubCounter) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	s.calls++
	s.lastUser = userID
	s.lastSince = since
	_, s.hadDeadline = ctx.Deadline()
	return s.count, s.err
}

func TestAllowUnderDailyLimit(t *testing.T) {
	counter := &stubCounter{count: 49}
	guard := NewQuotaGuard(counter, "admin-1", 50)

	decision := guard.Allow(context.Background(), "user-7")
	if !decision.Allowed {
		t.Fatalf("expected turn 50 to be allowed, got denial: %q", decision.Message)
	}
	if counter.lastUser != "user-7" {
		t.Fatalf("counted wrong user: %q", counter.lastUser)
	}
}

func TestDenyAtDailyLimit(t *testing.T) {
	counter := &stubCounter{count: 50}
	guard := NewQuotaGuard(counter, "admin-1", 50)

	decision := guard.Allow(context.Background(), "user-7")
	if decision.Allowed {
		t.Fatal("expected denial at the ceiling")
	}
	if decision.Message == "" {
		t.Fatal("expected a user-facing denial message")
	}
	if want := strconv.Itoa(50); !strings.Contains(decision.Message, want) {
		t.Fatalf("denial message should state the limit, got %q", decision.Message)
	}
}

func TestAdminBypassesQuotaWithoutStoreQueries(t *testing.T) {
	counter := &stubCounter{count: 9999}
	guard := NewQuotaGuard(counter, "admin-1", 50)

	decision := guard.Allow(context.Background(), "admin-1")
	if !decision.Allowed {
		t.Fatal("expected admin to be allowed")
	}
	if counter.calls != 0 {
		t.Fatalf("expected zero store queries for admin, got %d", counter.calls)
	}
}

func TestEmptyAdminConfigDoesNotBypass(t *testing.T) {
	counter := &stubCounter{count: 50}
	guard := NewQuotaGuard(counter, "", 50)

	decision := guard.Allow(context.Background(), "")
	if decision.Allowed {
		t.Fatal("blank user id must not match a blank admin config")
	}
}

func TestAllowBoundsCountQueryWithDeadline(t *testing.T) {
	counter := &stubCounter{count: 0}
	guard := NewQuotaGuard(counter, "admin-1", 50)

	guard.Allow(context.Background(), "user-7")

	if counter.calls != 1 {
		t.Fatalf("expected one count query, got %d", counter.calls)
	}
	if !counter.hadDeadline {
		t.Fatal("count query must run under the store timeout")
	}
}

func TestAllowFailsOpenWhenStoreErrors(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	guard := NewQuotaGuard(counter, "admin-1", 50)

	decision := guard.Allow(context.Background(), "user-7")
	if !decision.Allowed {
		t.Fatal("expected fail-open allow when the count query fails")
	}
}

func TestQuotaWindowUsesJapanMidnight(t *testing.T) {
	counter := &stubCounter{count: 0}
	guard := NewQuotaGuard(counter, "admin-1", 50)
	guard.now = func() time.Time {
		// 01:30 on March 10th in UTC+9 is still March 9th in UTC.
		return time.Date(2026, 3, 9, 16, 30, 0, 0, time.UTC)
	}

	guard.Allow(context.Background(), "user-7")

	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, quotaZone)
	if !counter.lastSince.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, counter.lastSince)
	}

	yesterdayLate := time.Date(2026, 3, 9, 23, 59, 59, 0, quotaZone)
	if !yesterdayLate.Before(counter.lastSince) {
		t.Fatal("23:59:59 yesterday must fall outside today's window")
	}
	todayMidnight := time.Date(2026, 3, 10, 0, 0, 0, 0, quotaZone)
	if todayMidnight.Before(counter.lastSince) {
		t.Fatal("00:00:00 today must fall inside today's window")
	}
}

func TestStartOfQuotaDayNormalizesAcrossZones(t *testing.T) {
	utc := time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC) // July 2nd, 05:00 in UTC+9
	local := time.Date(2026, 7, 2, 5, 0, 0, 0, quotaZone)

	if !StartOfQuotaDay(utc).Equal(StartOfQuotaDay(local)) {
		t.Fatal("same instant must map to the same quota day start")
	}
	if got := StartOfQuotaDay(utc); got.Day() != 2 {
		t.Fatalf("expected July 2nd start in UTC+9, got %v", got)
	}
}
