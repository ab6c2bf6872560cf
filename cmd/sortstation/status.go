package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sortstation/pkg/config"
	"sortstation/pkg/station"
)

type statusData struct {
	snapshot *station.Snapshot
	config   *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	snap, err := apiClient.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to get station snapshot: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		snapshot: snap,
		config:   conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the station",
		Long:    `Get the station snapshot and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Get various info first.
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")
			snap := data.snapshot

			cmd.Println(bold("Sensors:"))
			if snap.HasReading {
				cmd.Printf("  Distance: %s\n", bold("%.1fcm", snap.DistanceCM))
				present := snap.DistanceCM <= conf.MotionThresholdCM()
				cmd.Println("  Object present: " + bool2Text(present))
			} else {
				cmd.Println("  Distance: " + color.YellowString("no reading"))
			}
			cmd.Println("  Dark: " + bool2Text(snap.Dark))
			cmd.Println("  Motion: " + bool2Text(snap.Motion))

			cmd.Println()
			cmd.Println(bold("Station:"))
			cmd.Println("  Light on: " + bool2Text(snap.LightOn))
			cmd.Println("  Camera active: " + bool2Text(snap.CameraActive))

			category := snap.Classification.Category
			switch category {
			case station.CategoryWaiting:
				cmd.Printf("  Classification: %s\n", color.YellowString(category))
			case station.CategoryCameraError:
				cmd.Printf("  Classification: %s\n", color.RedString(category))
			case station.CategoryUnidentified:
				cmd.Printf("  Classification: %s\n", category)
			default:
				cmd.Printf("  Classification: %s (%.1f%%)\n", color.GreenString(category), snap.Classification.Confidence)
			}

			cmd.Println()
			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Presence threshold: %s\n", bold("%.0fcm", conf.MotionThresholdCM()))
			cmd.Printf("  Motion delta: %s\n", bold("%.0fcm", conf.MotionDeltaCM()))
			cmd.Printf("  Poll interval: %s\n", bold("%s", conf.PollInterval()))
			cmd.Printf("  Light duration: %s\n", bold("%s", conf.LightDuration()))
			cmd.Printf("  Camera window: %s\n", bold("%s", conf.CameraWindow()))
			cmd.Printf("  Classification cooldown: %s\n", bold("%s", conf.ClassifyCooldown()))
			cmd.Printf("  Acceptance confidence: %s\n", bold("%.0f%%", conf.MinConfidence()))
			if expr := conf.SelfTestCron(); expr != "" {
				cmd.Printf("  Self-test schedule: %s\n", bold("%s", expr))
			}

			return nil
		},
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
