package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"sortstation/pkg/config"
	"sortstation/pkg/station"
)

func (c *Client) GetSnapshot() (*station.Snapshot, error) {
	ret, err := c.Get("/snapshot")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get station snapshot")
	}

	var snap station.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal station snapshot")
	}

	return &snap, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) SetMotionThreshold(cm float64) (string, error) {
	return c.Put("/motion-threshold", strconv.FormatFloat(cm, 'f', -1, 64))
}

func (c *Client) SetMotionDelta(cm float64) (string, error) {
	return c.Put("/motion-delta", strconv.FormatFloat(cm, 'f', -1, 64))
}

func (c *Client) SetPollInterval(ms int) (string, error) {
	return c.Put("/poll-interval", strconv.Itoa(ms))
}

func (c *Client) SetLightDuration(seconds float64) (string, error) {
	return c.Put("/light-duration", strconv.FormatFloat(seconds, 'f', -1, 64))
}

func (c *Client) SetCameraWindow(seconds float64) (string, error) {
	return c.Put("/camera-window", strconv.FormatFloat(seconds, 'f', -1, 64))
}

func (c *Client) SetCooldown(seconds float64) (string, error) {
	return c.Put("/cooldown", strconv.FormatFloat(seconds, 'f', -1, 64))
}

func (c *Client) SetMinConfidence(percent float64) (string, error) {
	return c.Put("/min-confidence", strconv.FormatFloat(percent, 'f', -1, 64))
}

func (c *Client) SetSelfTestSchedule(cronExpr string) (string, error) {
	payload, err := json.Marshal(cronExpr)
	if err != nil {
		return "", err
	}
	return c.Put("/self-test-schedule", string(payload))
}

func (c *Client) RunSelfTest() (*station.SelfTestReport, error) {
	ret, err := c.Post("/self-test", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to run self-test")
	}

	var report station.SelfTestReport
	if err := json.Unmarshal([]byte(ret), &report); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal self-test report")
	}

	return &report, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var version string
	if err := json.Unmarshal([]byte(ret), &version); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return version, nil
}
