package alarm

import (
	"sync"

	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/models"
)

// State of the foreground alarm session
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateActive:
		return "ALARM_ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Presenter renders the blocking alert. Implementations must not block and
// must not call back into the Session synchronously.
type Presenter interface {
	ShowAlarm(batch *models.FiredAlarmBatch)
	UpdateAlarm(batch *models.FiredAlarmBatch)
	CloseAlarm()
}

// Sounder plays a looping tone until stopped
type Sounder interface {
	Start() error
	Stop()
}

// WakeLock keeps the display awake while held
type WakeLock interface {
	Acquire() error
	Release() error
}

// Notifier raises a host-level notification mirroring the active alarm
type Notifier interface {
	NotifyAlarm(batch *models.FiredAlarmBatch) error
}

// Feedback bundles the side effects of an active alarm. Any field may be nil,
// in which case that capability is skipped.
type Feedback struct {
	Presenter Presenter
	Sounder   Sounder
	WakeLock  WakeLock
	Vibrator  Vibrator
	Notifier  Notifier
}

// Session is the IDLE -> ALARM_ACTIVE -> IDLE state machine. Only an explicit
// Dismiss leaves ALARM_ACTIVE; there is no timeout.
type Session struct {
	mu       sync.Mutex
	state    State
	batch    *models.FiredAlarmBatch
	lockHeld bool
	haptics  *HapticLoop

	fb     Feedback
	logger *zap.Logger
}

// NewSession creates an idle session
func NewSession(fb Feedback, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{fb: fb, logger: logger}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns a copy of the active batch, or nil when idle
func (s *Session) Active() *models.FiredAlarmBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Clone()
}

// Dispatch starts an alarm for batch. While an alarm is already active the
// new items are merged into it instead of opening a second session.
// It reports whether the session entered ALARM_ACTIVE.
func (s *Session) Dispatch(batch *models.FiredAlarmBatch) bool {
	if batch.Empty() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive {
		added := s.batch.Merge(batch)
		if added == 0 {
			return false
		}
		s.logger.Info("Merged items into active alarm",
			zap.Int("added", added),
			zap.String("minute", batch.MinuteKey))
		if s.fb.Presenter != nil {
			s.fb.Presenter.UpdateAlarm(s.batch.Clone())
		}
		s.notify(s.batch.Clone())
		return false
	}

	s.state = StateActive
	s.batch = batch.Clone()
	s.logger.Info("Alarm active",
		zap.String("minute", batch.MinuteKey),
		zap.Int("medications", len(batch.Medications)),
		zap.Int("appointments", len(batch.Appointments)))

	if s.fb.Presenter != nil {
		s.fb.Presenter.ShowAlarm(s.batch.Clone())
	}

	if s.fb.Sounder != nil {
		if err := s.fb.Sounder.Start(); err != nil {
			s.logger.Warn("Alarm tone unavailable", zap.Error(err))
		}
	}

	if s.fb.Vibrator != nil {
		s.haptics = NewHapticLoop(s.fb.Vibrator, DefaultVibrationPattern, DefaultHapticInterval, s.logger)
		s.haptics.Start()
	}

	if s.fb.WakeLock != nil {
		if err := s.fb.WakeLock.Acquire(); err != nil {
			s.logger.Warn("Stay-awake lock not acquired", zap.Error(err))
		} else {
			s.lockHeld = true
		}
	}

	s.notify(s.batch.Clone())
	return true
}

// Dismiss stops every side effect of the active alarm and returns to IDLE.
// Dismissing while idle is a no-op. It reports whether an alarm was stopped.
func (s *Session) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}

	if s.fb.Sounder != nil {
		s.fb.Sounder.Stop()
	}
	if s.haptics != nil {
		s.haptics.Stop()
		s.haptics = nil
	}
	if s.lockHeld {
		if err := s.fb.WakeLock.Release(); err != nil {
			s.logger.Warn("Stay-awake lock release failed", zap.Error(err))
		}
		s.lockHeld = false
	}
	if s.fb.Presenter != nil {
		s.fb.Presenter.CloseAlarm()
	}

	s.logger.Info("Alarm dismissed", zap.String("minute", s.batch.MinuteKey))
	s.state = StateIdle
	s.batch = nil
	return true
}

// notify raises the host notification in parallel; failures are only logged
func (s *Session) notify(batch *models.FiredAlarmBatch) {
	if s.fb.Notifier == nil {
		return
	}
	go func() {
		if err := s.fb.Notifier.NotifyAlarm(batch); err != nil {
			s.logger.Debug("System notification skipped", zap.Error(err))
		}
	}()
}
