package daemon

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestCronParse(t *testing.T) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse("@every 10m")
	if err != nil {
		t.Fatalf("failed to parse cron expression: %v", err)
	}

	now := time.Now()
	next1 := schedule.Next(now)
	next2 := schedule.Next(next1)

	if !next2.After(next1) {
		t.Fatalf("expected next2 to be after next1, got next1=%v next2=%v", next1, next2)
	}
}

func TestSchedulerScheduleStatus(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil)

	if err := s.Schedule("@every 1m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	expr, next := s.Status()
	if expr != "@every 1m" {
		t.Fatalf("expr = %q, want @every 1m", expr)
	}
	if next.IsZero() {
		t.Fatalf("next run should be set after scheduling")
	}
}

func TestSchedulerInvalidExpr(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil)
	if err := s.Schedule("not a cron expr"); err == nil {
		t.Fatal("expected an error for a bad expression")
	}
}

func TestSchedulerEmptyExprClears(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil)
	if err := s.Schedule("@every 1m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if err := s.Schedule(""); err != nil {
		t.Fatalf("clearing schedule returned error: %v", err)
	}

	expr, next := s.Status()
	if expr != "" || !next.IsZero() {
		t.Fatalf("Status = (%q, %v), want cleared", expr, next)
	}
}

func TestSchedulerRunCycle(t *testing.T) {
	taskCh := make(chan struct{}, 1)
	var preChecks int32

	task := func() error {
		select {
		case taskCh <- struct{}{}:
		default:
		}
		return nil
	}
	preCheck := func() error {
		atomic.AddInt32(&preChecks, 1)
		return nil
	}

	s := NewScheduler(task, preCheck)
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-taskCh:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run in time")
	}

	if atomic.LoadInt32(&preChecks) == 0 {
		t.Fatal("precheck should run before the task")
	}
}

func TestSchedulerPreCheckRetries(t *testing.T) {
	taskCh := make(chan struct{}, 1)
	var preChecks int32

	task := func() error {
		select {
		case taskCh <- struct{}{}:
		default:
		}
		return nil
	}
	// Fail the first two checks, then let the run through.
	preCheck := func() error {
		if atomic.AddInt32(&preChecks, 1) <= 2 {
			return errors.New("busy")
		}
		return nil
	}

	s := NewScheduler(task, preCheck)
	s.preCheckInterval = 50 * time.Millisecond
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-taskCh:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run after precheck recovered")
	}

	if got := atomic.LoadInt32(&preChecks); got < 3 {
		t.Fatalf("preChecks = %d, want at least 3", got)
	}
}
