package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"

	"github.com/lehigh-university-libraries/ocrweb/pkg/engine"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Locate and probe the tesseract executable",
	Long:  "Locate and probe the tesseract executable once, print the result as YAML, and exit non-zero when it is not working",
	RunE:  runProbe,
}

func init() {
	RootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	monitor := newMonitor(cfg)
	status := monitor.Refresh(cmd.Context())

	out, err := yaml.Marshal(probeReport{
		State:      monitor.State().String(),
		Candidates: monitor.Candidates(),
		Status:     status,
	})
	if err != nil {
		return fmt.Errorf("failed to encode probe result: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))

	if !status.Working {
		return fmt.Errorf("%w: %s", engine.ErrEngineNotWorking, status.LastError)
	}
	return nil
}

type probeReport struct {
	State      string        `yaml:"state"`
	Candidates []string      `yaml:"candidates"`
	Status     engine.Status `yaml:",inline"`
}
