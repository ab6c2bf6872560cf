// Package daemon runs the station control loop and exposes it over an
// HTTP API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sortstation/pkg/config"
	"sortstation/pkg/events"
	"sortstation/pkg/station"
)

var (
	conf          config.Config
	ctl           *station.Controller
	hub           *events.EventHub
	testScheduler *Scheduler
)

// Options carries everything the daemon needs. The caller owns hardware
// construction; the daemon owns the loop, the API and teardown ordering.
type Options struct {
	Config       config.Config
	Controller   *station.Controller
	Hub          *events.EventHub
	SocketPath   string
	AllowNonRoot bool
}

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logrus.StandardLogger()))
	router.GET("/snapshot", getSnapshot)
	router.GET("/config", getConfig)
	router.GET("/version", getVersion)
	router.GET("/events", streamEvents)
	router.PUT("/motion-threshold", setMotionThreshold)
	router.PUT("/motion-delta", setMotionDelta)
	router.PUT("/poll-interval", setPollInterval)
	router.PUT("/light-duration", setLightDuration)
	router.PUT("/camera-window", setCameraWindow)
	router.PUT("/cooldown", setCooldown)
	router.PUT("/min-confidence", setMinConfidence)
	router.GET("/self-test-schedule", getSelfTestSchedule)
	router.PUT("/self-test-schedule", setSelfTestSchedule)
	router.POST("/self-test", runSelfTest)

	return router
}

func Run(opts Options) error {
	conf = opts.Config
	ctl = opts.Controller
	hub = opts.Hub

	router := setupRoutes()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", opts.SocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", opts.SocketPath)
		err = os.Chmod(opts.SocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	testScheduler = NewScheduler(runScheduledSelfTest, selfTestPreCheck)
	if expr := conf.SelfTestCron(); expr != "" {
		if err := testScheduler.Schedule(expr); err != nil {
			logrus.Errorf("invalid self-test schedule %q in config: %v", expr, err)
		}
	}
	testScheduler.Start()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go ctl.Run(loopCtx)

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping self-test scheduler")
	testScheduler.Stop()

	logrus.Info("stopping control loop")
	stopLoop()

	// Teardown swallows per-step failures so a stuck camera cannot keep
	// the light on.
	ctl.Teardown()
	hub.Close()

	logrus.Info("exiting")
	return nil
}

func runScheduledSelfTest() error {
	report := ctl.SelfTest(time.Now())
	hub.Publish(events.StationSelfTest, report)
	if !report.OK() {
		return errors.New("self-test reported failures")
	}
	return nil
}

// selfTestPreCheck keeps a scheduled self-test from stealing the camera
// while an object is being classified.
func selfTestPreCheck() error {
	if !ctl.Idle(time.Now()) {
		return errors.New("station is mid-observation")
	}
	return nil
}
