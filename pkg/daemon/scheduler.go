package daemon

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	defaultPreCheckMaxTimes = 30
	defaultPreCheckInterval = time.Second * 10
)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// Scheduler runs a task on a cron schedule. PreCheck gates each run: while
// it fails the run is retried at a fixed interval, and after too many
// failures the run is abandoned and the next one scheduled.
type Scheduler struct {
	Task     TaskFunc // task callback
	PreCheck TaskFunc // condition check callback, may be nil

	parser cron.Parser

	preCheckMaxTimes int
	preCheckInterval time.Duration

	mu       sync.Mutex
	schedule cron.Schedule
	expr     string
	nextRun  time.Time
	running  bool

	recalcCh chan cron.Schedule
	stopCh   chan struct{}
}

func NewScheduler(task, preCheck TaskFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &Scheduler{
		Task:             task,
		PreCheck:         preCheck,
		parser:           cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		preCheckMaxTimes: defaultPreCheckMaxTimes,
		preCheckInterval: defaultPreCheckInterval,
		recalcCh:         make(chan cron.Schedule, 1),
		stopCh:           make(chan struct{}),
	}
}

// Schedule replaces the cron expression. An empty expression clears the
// schedule; the scheduler stays running and simply has nothing to do.
func (s *Scheduler) Schedule(cronExpr string) error {
	var sh cron.Schedule
	if cronExpr != "" {
		var err error
		sh, err = s.parser.Parse(cronExpr)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.expr = cronExpr
	running := s.running
	if !running {
		s.setSchedule(sh)
	}
	s.mu.Unlock()

	if running {
		select {
		case s.recalcCh <- sh:
		default:
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.runScheduled()
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

// Status returns the configured expression and the next run time, which is
// zero when no schedule is set.
func (s *Scheduler) Status() (expr string, nextRun time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expr, s.nextRun
}

// setSchedule must be called with mu held.
func (s *Scheduler) setSchedule(sh cron.Schedule) {
	s.schedule = sh
	if sh == nil {
		s.nextRun = time.Time{}
		return
	}
	s.nextRun = sh.Next(time.Now())
}

func (s *Scheduler) runScheduled() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("scheduler stopped")
	}()

	logrus.Debug("scheduler started")

	for {
		attempts := 0

		s.mu.Lock()
		schedule, nextRun := s.schedule, s.nextRun
		s.mu.Unlock()

		var timer *time.Timer
		if schedule == nil || nextRun.IsZero() {
			timer = time.NewTimer(time.Hour * 10000)
		} else {
			wait := time.Until(nextRun)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
		}

		for {
			select {
			case <-timer.C:
				if schedule == nil || nextRun.IsZero() {
					break
				}

				if s.PreCheck != nil {
					if err := s.PreCheck(); err != nil {
						attempts++
						if attempts <= s.preCheckMaxTimes {
							logrus.Debugf("precheck failed (%d/%d): %v; retrying in %s", attempts, s.preCheckMaxTimes, err, s.preCheckInterval)
							timer.Reset(s.preCheckInterval)
							continue
						}

						logrus.Warnf("precheck kept failing, skipping this run: %v", err)
						timer.Stop()
						s.advanceNextRun()
						break
					}
				}

				logrus.Debugf("running scheduled task at %s", nextRun.Format(time.DateTime))
				timer.Stop()

				go func() {
					if err := s.Task(); err != nil {
						logrus.Errorf("scheduled task failed: %v", err)
					}
				}()
				s.advanceNextRun()
			case <-s.stopCh:
				timer.Stop()
				return
			case sh := <-s.recalcCh:
				timer.Stop()
				s.mu.Lock()
				s.setSchedule(sh)
				s.mu.Unlock()
			}

			break
		}
	}
}

func (s *Scheduler) advanceNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return
	}
	s.nextRun = s.schedule.Next(s.nextRun)
}

// ScheduleStatus is the API payload for the self-test schedule.
type ScheduleStatus struct {
	Expr    string `json:"expr"`
	NextRun string `json:"nextRun,omitempty"`
}

func scheduleStatus(s *Scheduler) ScheduleStatus {
	expr, nextRun := s.Status()
	st := ScheduleStatus{Expr: expr}
	if !nextRun.IsZero() {
		st.NextRun = nextRun.Format(time.RFC3339)
	}
	return st
}
