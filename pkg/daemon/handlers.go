package daemon

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sortstation/pkg/config"
	"sortstation/pkg/events"
	"sortstation/pkg/version"
)

func getSnapshot(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, ctl.Snapshot())
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func setMotionThreshold(c *gin.Context) {
	var cm float64
	if err := c.BindJSON(&cm); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if cm <= 0 || cm > 400 {
		err := fmt.Errorf("motion threshold must be between 0 and 400 cm, got %v", cm)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetMotionThresholdCM(cm)
	if err := saveConfig(c); err != nil {
		return
	}

	logrus.Infof("set motion threshold to %vcm", cm)
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("objects within %vcm now count as present", cm))
}

func setMotionDelta(c *gin.Context) {
	var cm float64
	if err := c.BindJSON(&cm); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if cm <= 0 {
		err := fmt.Errorf("motion delta must be positive, got %v", cm)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetMotionDeltaCM(cm)
	if err := saveConfig(c); err != nil {
		return
	}

	logrus.Infof("set motion delta to %vcm", cm)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setPollInterval(c *gin.Context) {
	var ms int
	if err := c.BindJSON(&ms); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if ms < 10 || ms > 10000 {
		err := fmt.Errorf("poll interval must be between 10 and 10000 ms, got %d", ms)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetPollIntervalMS(ms)
	if err := saveConfig(c); err != nil {
		return
	}

	logrus.Infof("set poll interval to %dms", ms)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setLightDuration(c *gin.Context) {
	setSeconds(c, "light duration", conf.SetLightSeconds)
}

func setCameraWindow(c *gin.Context) {
	setSeconds(c, "camera window", conf.SetCameraSeconds)
}

func setCooldown(c *gin.Context) {
	setSeconds(c, "classification cooldown", conf.SetCooldownSeconds)
}

// setSeconds is the shared body of the duration setters; they differ only
// in which config field they write.
func setSeconds(c *gin.Context, name string, set func(float64)) {
	var seconds float64
	if err := c.BindJSON(&seconds); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if seconds <= 0 {
		err := fmt.Errorf("%s must be positive, got %v", name, seconds)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	set(seconds)
	if err := saveConfig(c); err != nil {
		return
	}

	logrus.Infof("set %s to %vs", name, seconds)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setMinConfidence(c *gin.Context) {
	var percent float64
	if err := c.BindJSON(&percent); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if percent < 0 || percent > 100 {
		err := fmt.Errorf("confidence must be between 0 and 100, got %v", percent)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetMinConfidence(percent)
	if err := saveConfig(c); err != nil {
		return
	}

	logrus.Infof("set acceptance confidence to %v%%", percent)
	c.IndentedJSON(http.StatusCreated, "ok")
}

func getSelfTestSchedule(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, scheduleStatus(testScheduler))
}

func setSelfTestSchedule(c *gin.Context) {
	var expr string
	if err := c.BindJSON(&expr); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := testScheduler.Schedule(expr); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetSelfTestCron(expr)
	if err := saveConfig(c); err != nil {
		return
	}

	if expr == "" {
		logrus.Infof("disabled scheduled self-tests")
	} else {
		logrus.Infof("set self-test schedule to %q", expr)
	}
	c.IndentedJSON(http.StatusCreated, "ok")
}

func runSelfTest(c *gin.Context) {
	report := ctl.SelfTest(time.Now())
	hub.Publish(events.StationSelfTest, report)
	c.IndentedJSON(http.StatusOK, report)
}

// streamEvents forwards hub events to the client as SSE until it
// disconnects.
func streamEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// saveConfig persists the config, aborting the request on failure. Returns
// the error so the caller can stop.
func saveConfig(c *gin.Context) error {
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return err
	}
	return nil
}
