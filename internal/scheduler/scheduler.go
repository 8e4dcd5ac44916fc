package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task는 스케줄러가 실행할 작업을 정의하는 인터페이스입니다
type Task interface {
	Name() string
	Execute(ctx context.Context) error
}

// TaskFunc는 함수를 Task로 사용할 수 있게 합니다
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

func (f TaskFunc) Name() string                      { return f.TaskName }
func (f TaskFunc) Execute(ctx context.Context) error { return f.Fn(ctx) }

// Scheduler는 정해진 주기로 작업을 실행하는 스케줄러입니다
type Scheduler struct {
	interval  time.Duration
	task      Task
	log       logrus.FieldLogger
	immediate bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option은 스케줄러 생성 옵션을 정의합니다
type Option func(*Scheduler)

// WithLogger는 로거를 설정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// WithImmediateRun은 시작 직후 한 번 실행할지 설정합니다
func WithImmediateRun(immediate bool) Option {
	return func(s *Scheduler) {
		s.immediate = immediate
	}
}

// NewScheduler는 새로운 스케줄러를 생성합니다
func NewScheduler(interval time.Duration, task Task, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: interval,
		task:     task,
		log:      logrus.StandardLogger(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("task", task.Name())
	return s
}

// Start는 ctx가 취소되거나 Stop이 호출될 때까지 작업을 반복 실행합니다.
// 작업 에러는 기록만 하고 계속 실행합니다.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.immediate {
		s.run(ctx)
	}

	// 다음 실행 시간 계산
	now := time.Now()
	nextRun := now.Truncate(s.interval).Add(s.interval)
	timer := time.NewTimer(nextRun.Sub(now))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stopCh:
			return nil

		case <-timer.C:
			s.run(ctx)

			now := time.Now()
			nextRun = now.Truncate(s.interval).Add(s.interval)
			s.log.WithField("next_run", nextRun.Format("15:04:05.000")).Trace("다음 실행 예약")

			// 타이머 리셋
			timer.Reset(nextRun.Sub(now))
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.task.Execute(ctx); err != nil {
		s.log.WithError(err).Warn("작업 실행 실패")
	}
}

// Stop은 스케줄러를 중지합니다. 여러 번 호출해도 안전합니다.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
