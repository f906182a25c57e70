package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/alarm"
	"github.com/borgmon/carebell/pkg/audio"
	"github.com/borgmon/carebell/pkg/calendar"
	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/config"
	"github.com/borgmon/carebell/pkg/courier"
	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/platform"
	"github.com/borgmon/carebell/pkg/schedule"
	"github.com/borgmon/carebell/pkg/spool"
	"github.com/borgmon/carebell/pkg/store"
	"github.com/borgmon/carebell/pkg/tips"
)

const (
	appName = "carebell"

	// appointments older than this are dropped on each feed sync
	appointmentRetention = 30 * 24 * time.Hour
)

// CareBell wires the alarm core to the desktop
type CareBell struct {
	app    fyne.App
	env    *config.Env
	logger *zap.Logger

	configStore *store.ConfigStore
	intake      *store.IntakeStore
	config      atomic.Pointer[models.Config]

	schedule   *schedule.Service
	controller *alarm.Controller
	courier    *courier.Courier
	spool      *spool.Spool
	notifier   *platform.Notifier
	fetcher    *calendar.Fetcher
	tips       *tips.Client
	daily      *tips.Daily

	configWindow *ConfigWindow
	tip          atomic.Value // string

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	syncNow  chan struct{}
	stopOnce sync.Once
}

// NewCareBell builds every component; nothing runs until Run
func NewCareBell(env *config.Env, logger *zap.Logger) (*CareBell, error) {
	cb := &CareBell{
		app:     app.NewWithID(env.AppID),
		env:     env,
		logger:  logger,
		syncNow: make(chan struct{}, 1),
	}
	cb.ctx, cb.cancel = context.WithCancel(context.Background())
	cb.app.SetIcon(resourceIcon)

	cb.configStore = store.NewConfigStore(cb.app)
	cb.intake = store.NewIntakeStore(cb.app)
	cfg := cb.configStore.Load()
	cb.config.Store(cfg)
	if err := setupAutostart(cfg.AutoStart, logger); err != nil {
		logger.Warn("Autostart not updated", zap.Error(err))
	}
	if _, text := cb.intake.LastTip(); text != "" {
		cb.tip.Store(text)
	}

	svc, err := schedule.NewService(store.NewScheduleStore(cb.app), logger.Named("schedule"))
	if err != nil {
		return nil, err
	}
	cb.schedule = svc

	cb.courier = cb.newCourier(cfg)

	presenter := NewAlarmWindow(cb.app, cb.holdTime, cb.dismiss, cb.markTaken, logger.Named("window"))
	session := alarm.NewSession(alarm.Feedback{
		Presenter: presenter,
		Sounder:   audio.NewLooper(nil, logger.Named("audio")),
		WakeLock:  platform.NewWakeLock(appName),
		Vibrator:  platform.Vibrator{},
		Notifier:  cb.courier.Gated(cb.notificationsEnabled),
	}, logger.Named("alarm"))

	sampler := clock.NewSampler(clock.System{}, env.SamplePeriod)
	cb.controller = alarm.NewController(sampler, session, svc.Snapshot(), logger.Named("alarm"))

	cb.tips = tips.NewClient(tips.Config{
		APIKey:  env.GeminiAPIKey,
		Model:   env.GeminiModel,
		BaseURL: env.GeminiURL,
		Timeout: env.TipTimeout,
	}, logger.Named("tips"))
	cb.daily = tips.NewDaily(cb.tips, cb.intake, func() bool {
		return cb.cfg().DailyTipEnabled
	}, cb.showTip, env.TipTimeout, logger.Named("tips"))
	cb.controller.OnMinute(cb.daily.Observe)
	cb.controller.OnMinute(func(s clock.Sample, sched models.Schedule) {
		cb.refreshTray(sched, s.At)
	})

	cb.fetcher = calendar.NewFetcher(clock.System{}, calendar.DefaultHorizon, logger.Named("calendar"))
	return cb, nil
}

func (cb *CareBell) newCourier(cfg *models.Config) *courier.Courier {
	// a typed nil would hide the missing spool from the courier
	var queue courier.Queue
	sp, err := spool.Open(cb.env.SpoolPath)
	if err != nil {
		cb.logger.Warn("Notification spool unavailable, ladder limited to the first alert",
			zap.String("path", cb.env.SpoolPath), zap.Error(err))
	} else {
		cb.spool = sp
		queue = sp
	}

	cb.notifier = platform.NewNotifier(appName)
	host := newNotificationHost(cb.app, cb.notifier, cb.logger.Named("notify"))
	c := courier.New(host, queue, courier.Options{
		Offsets: cfg.GetSnoozeOffsets(),
		Icon:    appName,
		OnOpen:  func() { fyne.Do(cb.showConfigWindow) },
	}, cb.logger.Named("courier"))
	cb.notifier.OnAction(c.HandleAction)
	return c
}

// Run starts the background loops and blocks in the fyne event loop
func (cb *CareBell) Run() {
	lc := cb.app.Lifecycle()
	lc.SetOnStarted(func() {
		platform.HideDockIcon()
		cb.refreshTray(cb.schedule.Snapshot(), time.Now())
		if len(cb.schedule.Snapshot().Medications) == 0 {
			cb.showConfigWindow()
		}
	})
	lc.SetOnEnteredForeground(func() { cb.controller.SetVisible(true) })
	lc.SetOnExitedForeground(func() { cb.controller.SetVisible(false) })
	lc.SetOnStopped(cb.shutdown)

	cb.goLoop("controller", func(ctx context.Context) error { return cb.controller.Run(ctx) })
	cb.goLoop("courier", func(ctx context.Context) error { return cb.courier.Run(ctx) })
	cb.goLoop("forward", func(ctx context.Context) error {
		cb.courier.Forward(ctx, cb.schedule.Subscribe(), cb.notificationsEnabled)
		return nil
	})
	cb.goLoop("schedule", cb.followSchedule)
	cb.goLoop("calendar", cb.calendarLoop)

	cb.logger.Info("CareBell started",
		zap.Duration("sample_period", cb.env.SamplePeriod),
		zap.Bool("tips", cb.env.TipsEnabled()))
	cb.app.Run()
}

func (cb *CareBell) goLoop(name string, fn func(ctx context.Context) error) {
	cb.wg.Add(1)
	go func() {
		defer cb.wg.Done()
		if err := fn(cb.ctx); err != nil && !errors.Is(err, context.Canceled) {
			cb.logger.Error("Loop exited", zap.String("loop", name), zap.Error(err))
		}
	}()
}

// followSchedule pushes every schedule edit to the foreground controller
func (cb *CareBell) followSchedule(ctx context.Context) error {
	updates := cb.schedule.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case sched := <-updates:
			cb.controller.UpdateSchedule(sched)
			cb.refreshTray(sched, time.Now())
			fyne.Do(func() {
				if cb.configWindow != nil {
					cb.configWindow.scheduleChanged(sched)
				}
			})
		}
	}
}

func (cb *CareBell) cfg() *models.Config {
	return cb.config.Load()
}

func (cb *CareBell) notificationsEnabled() bool {
	return cb.cfg().NotificationsEnabled
}

func (cb *CareBell) holdTime() time.Duration {
	return time.Duration(cb.cfg().GetHoldTime()) * time.Second
}

func (cb *CareBell) dismiss() {
	if cb.controller.Session().Dismiss() {
		cb.logger.Info("Alarm dismissed")
	}
}

func (cb *CareBell) markTaken(medID string, taken bool) {
	cb.intake.SetTaken(time.Now(), medID, taken)
}

func (cb *CareBell) showTip(tip string) {
	cb.tip.Store(tip)
	cb.app.SendNotification(fyne.NewNotification("Today's tip", tip))
	cb.refreshTray(cb.schedule.Snapshot(), time.Now())
}

func (cb *CareBell) currentTip() string {
	tip, _ := cb.tip.Load().(string)
	return tip
}

// applyConfig persists cfg and propagates the parts that take effect live
func (cb *CareBell) applyConfig(cfg *models.Config) error {
	prev := cb.cfg()
	if err := setupAutostart(cfg.AutoStart, cb.logger); err != nil {
		return err
	}
	cb.configStore.Save(cfg)
	cb.config.Store(cfg)

	if prev.NotificationsEnabled != cfg.NotificationsEnabled {
		sched := models.Schedule{}
		if cfg.NotificationsEnabled {
			sched = cb.schedule.Snapshot()
		}
		// an empty schedule clears the ladder
		cb.courier.Post(courier.ScheduleAlarms(sched))
	}
	cb.requestSync()
	return nil
}

func (cb *CareBell) requestSync() {
	select {
	case cb.syncNow <- struct{}{}:
	default:
	}
}

// calendarLoop imports appointment feeds on the configured interval
func (cb *CareBell) calendarLoop(ctx context.Context) error {
	for {
		cb.syncCalendars(ctx)

		interval := time.Duration(cb.cfg().UpdateInterval) * time.Minute
		if interval < 5*time.Minute {
			interval = 5 * time.Minute
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-cb.syncNow:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (cb *CareBell) syncCalendars(ctx context.Context) {
	cfg := cb.cfg()
	configured := make(map[string]bool, len(cfg.ICalSources))

	for _, source := range cfg.ICalSources {
		if !source.Validate() {
			continue
		}
		configured[source.ID] = true

		appts, err := cb.fetcher.FetchAppointments(ctx, source)
		if err != nil {
			cb.logger.Warn("Feed sync failed, keeping previous appointments",
				zap.String("source", source.Name), zap.Error(err))
			continue
		}
		if _, err := cb.schedule.ImportAppointments(source.ID, appts); err != nil {
			cb.logger.Error("Saving imported appointments failed", zap.String("source", source.Name), zap.Error(err))
		}
	}

	// drop appointments whose feed was removed
	orphaned := map[string]bool{}
	for _, a := range cb.schedule.Snapshot().Appointments {
		if a.SourceID != "" && !configured[a.SourceID] {
			orphaned[a.SourceID] = true
		}
	}
	for id := range orphaned {
		if _, err := cb.schedule.ImportAppointments(id, nil); err != nil {
			cb.logger.Error("Removing orphaned appointments failed", zap.String("source", id), zap.Error(err))
		}
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if _, err := cb.schedule.PruneAppointments(midnight.Add(-appointmentRetention)); err != nil {
		cb.logger.Error("Pruning appointments failed", zap.Error(err))
	}
}

func (cb *CareBell) quit() {
	cb.shutdown()
	cb.app.Quit()
}

func (cb *CareBell) shutdown() {
	cb.stopOnce.Do(func() {
		cb.controller.Session().Dismiss()
		cb.cancel()
		cb.wg.Wait()
		cb.daily.Wait()
		cb.notifier.Shutdown()
		if cb.spool != nil {
			if err := cb.spool.Close(); err != nil {
				cb.logger.Warn("Closing spool failed", zap.Error(err))
			}
		}
		cb.logger.Info("CareBell stopped")
	})
}
