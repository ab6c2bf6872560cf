package main

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sortstation/pkg/config"
	"sortstation/pkg/daemon"
	"sortstation/pkg/events"
	"sortstation/pkg/hw"
	"sortstation/pkg/sensor"
	"sortstation/pkg/station"
	"sortstation/pkg/telemetry"
	"sortstation/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the daemon.
	alwaysAllowNonRootAccess = false
)

// Hardware wiring comes from the environment (or a .env file next to the
// binary), not from the runtime config file, because pins never change
// while the process runs.
const (
	envTriggerPin  = "SORTSTATION_TRIGGER_PIN" // default 17
	envEchoPin     = "SORTSTATION_ECHO_PIN"    // default 27
	envLightPin    = "SORTSTATION_LIGHT_PIN"   // default 22
	envFirmataPort = "SORTSTATION_FIRMATA_PORT"
	envFirmataBaud = "SORTSTATION_FIRMATA_BAUD" // default 57600
	envCameraURL   = "SORTSTATION_CAMERA_URL"
	envDetectorURL = "SORTSTATION_DETECTOR_URL"
	envMQTTBroker  = "SORTSTATION_MQTT_BROKER"
	envMQTTTopic   = "SORTSTATION_MQTT_TOPIC" // default sortstation
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run sortstation daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("sortstation daemon starting")
			return runDaemon()
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")

	return cmd
}

func runDaemon() error {
	// Missing .env is fine; the environment may be set by the service
	// manager instead.
	_ = godotenv.Load()

	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	triggerPin := envInt(envTriggerPin, 17)
	echoPin := envInt(envEchoPin, 27)
	lightPin := envInt(envLightPin, 22)

	gpio, err := hw.NewSysfsGPIO(map[int]hw.PinDirection{
		triggerPin: hw.Out,
		echoPin:    hw.In,
		lightPin:   hw.In,
	})
	if err != nil {
		logrus.Fatalf("failed to claim GPIO pins: %v", err)
	}

	var strip hw.LightArray
	if port := os.Getenv(envFirmataPort); port != "" {
		s, err := hw.NewFirmataStrip(port, envInt(envFirmataBaud, 57600), 9, 10, 11)
		if err != nil {
			logrus.Errorf("light strip unavailable, continuing without illumination: %v", err)
		} else {
			strip = s
		}
	} else {
		logrus.Warnf("%s not set, continuing without illumination", envFirmataPort)
	}

	var cam hw.Camera
	if url := os.Getenv(envCameraURL); url != "" {
		cam = hw.NewSnapshotCamera(url)
	} else {
		logrus.Warnf("%s not set, continuing without a camera", envCameraURL)
	}

	var clf hw.Classifier
	if url := os.Getenv(envDetectorURL); url != "" {
		clf = hw.NewHTTPClassifier(url)
	} else {
		logrus.Warnf("%s not set, continuing without a classifier", envDetectorURL)
	}

	hub := events.NewEventHub()

	telemetryCtx, stopTelemetry := context.WithCancel(context.Background())
	defer stopTelemetry()
	if broker := os.Getenv(envMQTTBroker); broker != "" {
		topic := os.Getenv(envMQTTTopic)
		if topic == "" {
			topic = "sortstation"
		}
		pub, err := telemetry.NewPublisher(telemetry.Config{
			Broker:    broker,
			ClientID:  "sortstation-daemon",
			BaseTopic: topic,
		})
		if err != nil {
			logrus.Errorf("telemetry unavailable, continuing without it: %v", err)
		} else {
			defer pub.Close()
			go pub.Run(telemetryCtx, hub)
		}
	}

	ctl := station.NewController(
		conf,
		sensor.NewRange(gpio, triggerPin, echoPin),
		sensor.NewLight(gpio, lightPin),
		station.NewIllumination(strip, hw.White),
		cam,
		clf,
		daemon.NewHubDisplay(hub),
	)

	err = daemon.Run(daemon.Options{
		Config:       conf,
		Controller:   ctl,
		Hub:          hub,
		SocketPath:   unixSocketPath,
		AllowNonRoot: alwaysAllowNonRootAccess,
	})

	// Release what the controller does not own. Failures here are logged
	// and ignored so every resource gets a release attempt.
	if strip != nil {
		if cerr := strip.Close(); cerr != nil {
			logrus.Errorf("failed to close light strip: %v", cerr)
		}
	}
	if cerr := gpio.Close(); cerr != nil {
		logrus.Errorf("failed to release GPIO pins: %v", cerr)
	}

	return err
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("invalid %s=%q, using %d: %v", name, v, def, err)
		return def
	}
	return n
}
