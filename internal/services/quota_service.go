package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Insightsparklabs/english-coach-app/internal/observability"
)

// The daily quota window follows the user base's calendar day, not UTC.
var quotaZone = time.FixedZone("UTC+9", 9*60*60)

type turnCounter interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Decision is the quota verdict for one incoming turn. A denial carries the
// user-facing message returned in place of a model reply.
type Decision struct {
	Allowed bool
	Message string
}

type QuotaGuard struct {
	counter     turnCounter
	adminUserID string
	dailyLimit  int
	now         func() time.Time
	logger      *slog.Logger
}

func NewQuotaGuard(counter turnCounter, adminUserID string, dailyLimit int) *QuotaGuard {
	return &QuotaGuard{
		counter:     counter,
		adminUserID: adminUserID,
		dailyLimit:  dailyLimit,
		now:         time.Now,
		logger:      observability.WithFields("component", "quota_guard"),
	}
}

// Allow decides whether a new turn may proceed. The admin identity bypasses
// the check entirely, without touching the store. A failed count query is
// fail-open: the turn proceeds and the failure is only logged.
func (g *QuotaGuard) Allow(ctx context.Context, userID string) Decision {
	if g.adminUserID != "" && userID == g.adminUserID {
		return Decision{Allowed: true}
	}

	countCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := g.counter.CountSince(countCtx, userID, StartOfQuotaDay(g.now()))
	if err != nil {
		g.logger.Warn("quota count failed, allowing turn",
			"user_id", userID,
			"error", err.Error(),
		)
		return Decision{Allowed: true}
	}

	if count >= g.dailyLimit {
		return Decision{Allowed: false, Message: denialMessage(g.dailyLimit)}
	}

	return Decision{Allowed: true}
}

// StartOfQuotaDay returns midnight of the UTC+9 calendar day containing t.
func StartOfQuotaDay(t time.Time) time.Time {
	local := t.In(quotaZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, quotaZone)
}

func denialMessage(limit int) string {
	return fmt.Sprintf(
		"You've reached today's limit of %d messages. Great work putting in the practice! Your quota resets at midnight Japan time - see you tomorrow.",
		limit,
	)
}
