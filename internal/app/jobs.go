package app

import (
	"context"
	"sync"
	"time"

	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const (
	reconcileMinAge  = 10 * time.Minute
	reconcileBatch   = 100
	reconcileWorkers = 8
	// sessions older than this are closed out locally regardless
	sessionStaleAfter = 24 * time.Hour
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	pool, err := ants.NewPool(reconcileWorkers)
	if err != nil {
		zap.S().Errorf("init worker pool error %s", err.Error())
	}
	a.pool = pool

	if _, err := a.sched.AddFunc("@every 5m", func() {
		a.ReconcileCheckouts(context.Background())
	}); err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if _, err := a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("created_at < ? AND read = ?", time.Now().Add(-time.Hour*24*90), true).
			Delete(&domain.Notification{})
	}); err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// ReconcileCheckouts sweeps open checkout sessions: paid ones get their
// order written as if the client had called finalize, stale ones are
// expired locally. This is the safety net for clients that disconnect
// after paying.
func (a *Application) ReconcileCheckouts(ctx context.Context) {
	sessions, err := a.checkoutSvc.OpenSessions(ctx, reconcileMinAge, reconcileBatch)
	if err != nil {
		zap.L().Error("failed to list open checkout sessions", zap.Error(err))
		return
	}
	if len(sessions) == 0 {
		return
	}

	zap.L().Info("reconciling open checkout sessions", zap.Int("count", len(sessions)))

	var wg sync.WaitGroup
	for _, sess := range sessions {
		sess := sess
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if time.Since(sess.CreatedAt) > sessionStaleAfter {
				a.expireSession(ctx, sess.SessionID)
				return
			}
			if err := a.checkoutSvc.Reconcile(ctx, sess.SessionID); err != nil {
				zap.L().Warn("checkout reconcile failed",
					zap.String("session_id", sess.SessionID), zap.Error(err))
			}
		}
		if a.pool != nil {
			if err := a.pool.Submit(task); err != nil {
				task()
			}
		} else {
			task()
		}
	}
	wg.Wait()
}

func (a *Application) expireSession(ctx context.Context, sessionID string) {
	err := a.gormDB.WithContext(ctx).
		Model(&domain.CheckoutSession{}).
		Where("session_id = ? AND status = ?", sessionID, domain.SessionStatusOpen).
		Update("status", domain.SessionStatusExpired).Error
	if err != nil {
		zap.L().Warn("failed to expire checkout session",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
