package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sortstation/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewThresholdCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "threshold [centimeters]",
		Short:   "Set the presence distance threshold",
		GroupID: gBasic,
		Long: `Set the presence distance threshold.

An object measured at or below this distance (in centimeters) counts as present and arms the camera window. Typical bins want something between 30 and 80 cm.`,
		RunE: func(_ *cobra.Command, args []string) error {
			cm, err := parseFloatArg(args, "threshold")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetMotionThreshold(cm)
			if err != nil {
				return fmt.Errorf("failed to set threshold: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set presence threshold to %vcm", cm)

			return nil
		},
	}
}

func NewDeltaCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delta [centimeters]",
		Short:   "Set the motion detection delta",
		GroupID: gAdvanced,
		Long: `Set the motion detection delta.

Two consecutive readings differing by more than this distance (in centimeters) count as motion in the status output.`,
		RunE: func(_ *cobra.Command, args []string) error {
			cm, err := parseFloatArg(args, "delta")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetMotionDelta(cm)
			if err != nil {
				return fmt.Errorf("failed to set delta: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set motion delta to %vcm", cm)

			return nil
		},
	}
}

func NewPollIntervalCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "poll-interval [milliseconds]",
		Short:   "Set the control loop poll interval",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, args []string) error {
			ms, err := parseIntArg(args, "poll interval")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetPollInterval(ms)
			if err != nil {
				return fmt.Errorf("failed to set poll interval: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set poll interval to %dms", ms)

			return nil
		},
	}
}

func NewLightDurationCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "light-duration [seconds]",
		Short:   "Set how long the light stays on",
		GroupID: gBasic,
		Long: `Set how long the light stays on.

When an object is detected in the dark, the light turns on for this many seconds. Detecting the object again extends the window.`,
		RunE: func(_ *cobra.Command, args []string) error {
			seconds, err := parseFloatArg(args, "light duration")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetLightDuration(seconds)
			if err != nil {
				return fmt.Errorf("failed to set light duration: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set light duration to %vs", seconds)

			return nil
		},
	}
}

func NewCameraWindowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "camera-window [seconds]",
		Short:   "Set how long the camera stays active",
		GroupID: gBasic,
		Long: `Set how long the camera stays active.

After an object is detected, classification attempts run for this many seconds. When the window expires the result resets to WAITING.`,
		RunE: func(_ *cobra.Command, args []string) error {
			seconds, err := parseFloatArg(args, "camera window")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCameraWindow(seconds)
			if err != nil {
				return fmt.Errorf("failed to set camera window: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set camera window to %vs", seconds)

			return nil
		},
	}
}

func NewCooldownCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "cooldown [seconds]",
		Short:   "Set the classification cooldown",
		GroupID: gAdvanced,
		Long: `Set the classification cooldown.

At most one capture+infer call runs per cooldown period, even when attempts fail.`,
		RunE: func(_ *cobra.Command, args []string) error {
			seconds, err := parseFloatArg(args, "cooldown")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetCooldown(seconds)
			if err != nil {
				return fmt.Errorf("failed to set cooldown: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set classification cooldown to %vs", seconds)

			return nil
		},
	}
}

func NewConfidenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "confidence [percent]",
		Short:   "Set the acceptance confidence",
		GroupID: gAdvanced,
		Long: `Set the acceptance confidence.

Detections at or below this confidence (in percent) are ignored; if nothing qualifies, the result is UNIDENTIFIED.`,
		RunE: func(_ *cobra.Command, args []string) error {
			percent, err := parseFloatArg(args, "confidence")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetMinConfidence(percent)
			if err != nil {
				return fmt.Errorf("failed to set confidence: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set acceptance confidence to %v%%", percent)

			return nil
		},
	}
}

func NewSelfTestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "self-test",
		Short:   "Run a hardware self-test now",
		GroupID: gAdvanced,
		Long: `Run a hardware self-test now.

Exercises the range sensor, light sensor, light strip and camera once and prints the report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := apiClient.RunSelfTest()
			if err != nil {
				return fmt.Errorf("failed to run self-test: %v", err)
			}

			cmd.Println(bold("Self-test report:"))
			cmd.Println("  Range sensor: " + bool2Text(report.RangeOK))
			if report.RangeOK {
				cmd.Printf("    Measured distance: %s\n", bold("%.1fcm", report.DistanceCM))
			}
			cmd.Println("  Light strip:  " + bool2Text(report.StripOK))
			cmd.Println("  Camera:       " + bool2Text(report.CameraOK))
			for _, e := range report.Errors {
				cmd.Printf("  - %s\n", e)
			}

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "schedule [cron expression]",
		Short: "Schedule periodic self-tests",
		Long: `Schedule periodic self-tests.

Takes a cron expression, e.g. "0 3 * * *" for every night at 3am or "@every 6h". An empty string disables the schedule.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("invalid number of arguments")
			}

			ret, err := apiClient.SetSelfTestSchedule(args[0])
			if err != nil {
				return fmt.Errorf("failed to set self-test schedule: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			if args[0] == "" {
				logrus.Infof("successfully disabled scheduled self-tests")
			} else {
				logrus.Infof("successfully set self-test schedule to %q", args[0])
			}

			return nil
		},
	})

	return cmd
}
