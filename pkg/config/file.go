package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"sortstation/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		MotionThresholdCM:  ptr.To(50.0),
		MotionDeltaCM:      ptr.To(5.0),
		PollIntervalMS:     ptr.To(200),
		LightSeconds:       ptr.To(10.0),
		CameraSeconds:      ptr.To(15.0),
		CooldownSeconds:    ptr.To(1.0),
		MinConfidence:      ptr.To(60.0),
		SelfTestCron:       ptr.To(""),
		AllowNonRootAccess: ptr.To(false),
	}
)

var _ Config = &File{}

// File is a JSON-file-backed Config. Fields absent from the file fall back
// to the defaults, so a hand-edited partial config stays valid.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile loads the config file at configPath, creating an all-defaults
// config when the file does not exist.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewFileFromConfig wraps an already-parsed raw config.
func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk shape. Pointer fields distinguish "absent"
// from zero values.
type RawFileConfig struct {
	MotionThresholdCM  *float64 `json:"motionThresholdCM,omitempty"`
	MotionDeltaCM      *float64 `json:"motionDeltaCM,omitempty"`
	PollIntervalMS     *int     `json:"pollIntervalMS,omitempty"`
	LightSeconds       *float64 `json:"lightSeconds,omitempty"`
	CameraSeconds      *float64 `json:"cameraSeconds,omitempty"`
	CooldownSeconds    *float64 `json:"cooldownSeconds,omitempty"`
	MinConfidence      *float64 `json:"minConfidence,omitempty"`
	SelfTestCron       *string  `json:"selfTestCron,omitempty"`
	AllowNonRootAccess *bool    `json:"allowNonRootAccess,omitempty"`
}

// NewRawFileConfigFromConfig snapshots a Config into its raw shape,
// e.g. for serving over the API.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		MotionThresholdCM:  ptr.To(c.MotionThresholdCM()),
		MotionDeltaCM:      ptr.To(c.MotionDeltaCM()),
		PollIntervalMS:     ptr.To(int(c.PollInterval() / time.Millisecond)),
		LightSeconds:       ptr.To(c.LightDuration().Seconds()),
		CameraSeconds:      ptr.To(c.CameraWindow().Seconds()),
		CooldownSeconds:    ptr.To(c.ClassifyCooldown().Seconds()),
		MinConfidence:      ptr.To(c.MinConfidence()),
		SelfTestCron:       ptr.To(c.SelfTestCron()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
	}, nil
}

func orDefault[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) MotionThresholdCM() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.MotionThresholdCM, defaultFileConfig.MotionThresholdCM)
}

func (f *File) MotionDeltaCM() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.MotionDeltaCM, defaultFileConfig.MotionDeltaCM)
}

func (f *File) PollInterval() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return time.Duration(orDefault(f.c.PollIntervalMS, defaultFileConfig.PollIntervalMS)) * time.Millisecond
}

func (f *File) LightDuration() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return secondsToDuration(orDefault(f.c.LightSeconds, defaultFileConfig.LightSeconds))
}

func (f *File) CameraWindow() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return secondsToDuration(orDefault(f.c.CameraSeconds, defaultFileConfig.CameraSeconds))
}

func (f *File) ClassifyCooldown() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return secondsToDuration(orDefault(f.c.CooldownSeconds, defaultFileConfig.CooldownSeconds))
}

func (f *File) MinConfidence() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.MinConfidence, defaultFileConfig.MinConfidence)
}

func (f *File) SelfTestCron() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.SelfTestCron, defaultFileConfig.SelfTestCron)
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) SetMotionThresholdCM(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MotionThresholdCM = &v
}

func (f *File) SetMotionDeltaCM(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MotionDeltaCM = &v
}

func (f *File) SetPollIntervalMS(v int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PollIntervalMS = &v
}

func (f *File) SetLightSeconds(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LightSeconds = &v
}

func (f *File) SetCameraSeconds(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CameraSeconds = &v
}

func (f *File) SetCooldownSeconds(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CooldownSeconds = &v
}

func (f *File) SetMinConfidence(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MinConfidence = &v
}

func (f *File) SetSelfTestCron(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SelfTestCron = &v
}

func (f *File) SetAllowNonRootAccess(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &v
}

// Load reads the config from disk. A missing or empty file yields an empty
// raw config (so everything falls back to defaults).
func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if err := json.Unmarshal(b, &conf); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

// Save writes the config to disk.
func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.c); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

// LogrusFields renders the effective config for startup logging.
func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"motionThresholdCM": f.MotionThresholdCM(),
		"motionDeltaCM":     f.MotionDeltaCM(),
		"pollInterval":      f.PollInterval(),
		"lightDuration":     f.LightDuration(),
		"cameraWindow":      f.CameraWindow(),
		"classifyCooldown":  f.ClassifyCooldown(),
		"minConfidence":     f.MinConfidence(),
		"selfTestCron":      f.SelfTestCron(),
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
