package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sortstation/pkg/utils/ptr"
)

func TestFile_Defaults(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	if got := f.MotionThresholdCM(); got != 50.0 {
		t.Errorf("MotionThresholdCM() = %v, want 50", got)
	}
	if got := f.MotionDeltaCM(); got != 5.0 {
		t.Errorf("MotionDeltaCM() = %v, want 5", got)
	}
	if got := f.PollInterval(); got != 200*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 200ms", got)
	}
	if got := f.LightDuration(); got != 10*time.Second {
		t.Errorf("LightDuration() = %v, want 10s", got)
	}
	if got := f.CameraWindow(); got != 15*time.Second {
		t.Errorf("CameraWindow() = %v, want 15s", got)
	}
	if got := f.ClassifyCooldown(); got != time.Second {
		t.Errorf("ClassifyCooldown() = %v, want 1s", got)
	}
	if got := f.MinConfidence(); got != 60.0 {
		t.Errorf("MinConfidence() = %v, want 60", got)
	}
}

func TestFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.json")
	if err := os.WriteFile(path, []byte(`{"motionThresholdCM": 30}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.MotionThresholdCM(); got != 30.0 {
		t.Errorf("MotionThresholdCM() = %v, want 30", got)
	}
	if got := f.LightDuration(); got != 10*time.Second {
		t.Errorf("LightDuration() = %v, want default 10s", got)
	}
}

func TestFile_MissingFileIsAllDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if got := f.PollInterval(); got != 200*time.Millisecond {
		t.Errorf("PollInterval() = %v, want default 200ms", got)
	}
}

func TestFile_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.json")

	f := NewFileFromConfig(&RawFileConfig{
		MotionThresholdCM: ptr.To(42.5),
		PollIntervalMS:    ptr.To(500),
		SelfTestCron:      ptr.To("0 3 * * *"),
	}, path)
	f.SetLightSeconds(7.5)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := g.MotionThresholdCM(); got != 42.5 {
		t.Errorf("MotionThresholdCM() = %v, want 42.5", got)
	}
	if got := g.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 500ms", got)
	}
	if got := g.LightDuration(); got != 7500*time.Millisecond {
		t.Errorf("LightDuration() = %v, want 7.5s", got)
	}
	if got := g.SelfTestCron(); got != "0 3 * * *" {
		t.Errorf("SelfTestCron() = %q, want cron expr", got)
	}
}
