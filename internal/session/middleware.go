package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Middleware opens a session for the request, commits it when the request
// ends with a 2xx status and no error, and rolls it back otherwise. The
// session is closed on every path, including panics, which are re-raised.
func Middleware(opener Opener, build services.Builder, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		ctx := c.UserContext()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}

		sess, err := opener.Open(ctx)
		if err != nil {
			metrics.SessionsTotal.WithLabelValues(metrics.OutcomeOpenError).Inc()
			return apperr.Internal("failed to open database session", err)
		}
		defer func() {
			if cerr := sess.Close(); cerr != nil {
				slog.Warn("session close failed", "error", cerr)
			}
		}()

		attach(c, &Scope{Session: sess, Services: build(sess.DB())})

		defer func() {
			if r := recover(); r != nil {
				_ = sess.Rollback()
				metrics.SessionsTotal.WithLabelValues(metrics.OutcomePanic).Inc()
				panic(r)
			}
		}()

		err = c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.StatusCode(err)
		}
		if err != nil || status < 200 || status > 299 {
			if rerr := sess.Rollback(); rerr != nil {
				slog.Warn("session rollback failed", "error", rerr)
			}
			metrics.SessionsTotal.WithLabelValues(metrics.OutcomeRollback).Inc()
			return err
		}

		if cerr := sess.Commit(); cerr != nil {
			metrics.SessionsTotal.WithLabelValues(metrics.OutcomeCommitError).Inc()
			return apperr.Internal("failed to commit transaction", cerr)
		}
		metrics.SessionsTotal.WithLabelValues(metrics.OutcomeCommit).Inc()
		return nil
	}
}
