package alarm

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/models"
	"github.com/borgmon/carebell/pkg/platform"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakePresenter struct {
	recorder
	last *models.FiredAlarmBatch
}

func (p *fakePresenter) ShowAlarm(b *models.FiredAlarmBatch) {
	p.record("show")
	p.mu.Lock()
	p.last = b
	p.mu.Unlock()
}

func (p *fakePresenter) UpdateAlarm(b *models.FiredAlarmBatch) {
	p.record("update")
	p.mu.Lock()
	p.last = b
	p.mu.Unlock()
}

func (p *fakePresenter) CloseAlarm() { p.record("close") }

func (p *fakePresenter) lastBatch() *models.FiredAlarmBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

type fakeSounder struct {
	recorder
	err error
}

func (s *fakeSounder) Start() error {
	s.record("start")
	return s.err
}

func (s *fakeSounder) Stop() { s.record("stop") }

type fakeWakeLock struct {
	recorder
	err error
}

func (w *fakeWakeLock) Acquire() error {
	w.record("acquire")
	return w.err
}

func (w *fakeWakeLock) Release() error {
	w.record("release")
	return nil
}

type fakeVibrator struct {
	recorder
	err error
}

func (v *fakeVibrator) Vibrate([]time.Duration) error {
	v.record("vibrate")
	return v.err
}

type fakeNotifier struct {
	recorder
}

func (n *fakeNotifier) NotifyAlarm(*models.FiredAlarmBatch) error {
	n.record("notify")
	return errors.New("permission denied")
}

type fixture struct {
	presenter *fakePresenter
	sounder   *fakeSounder
	wakeLock  *fakeWakeLock
	vibrator  *fakeVibrator
	notifier  *fakeNotifier
	session   *Session
}

func newFixture() *fixture {
	f := &fixture{
		presenter: &fakePresenter{},
		sounder:   &fakeSounder{},
		wakeLock:  &fakeWakeLock{},
		vibrator:  &fakeVibrator{err: platform.ErrUnsupported},
		notifier:  &fakeNotifier{},
	}
	f.session = NewSession(Feedback{
		Presenter: f.presenter,
		Sounder:   f.sounder,
		WakeLock:  f.wakeLock,
		Vibrator:  f.vibrator,
		Notifier:  f.notifier,
	}, nil)
	return f
}

func med(id, name, at string, enabled bool) models.Medication {
	return models.Medication{ID: id, Name: name, Dosage: "1 tablet", Time: models.MustTimeOfDay(at), Enabled: enabled}
}

func appt(id, title, date, at string, enabled bool) models.Appointment {
	return models.Appointment{ID: id, Title: title, Date: date, Time: models.MustTimeOfDay(at), Enabled: enabled}
}

func zapNop() *zap.Logger { return zap.NewNop() }
