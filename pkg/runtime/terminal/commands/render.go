package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtherapy/report-engine/pkg/chart"
	"github.com/qtherapy/report-engine/pkg/models/api"
	"github.com/qtherapy/report-engine/pkg/models/domain"
	"github.com/qtherapy/report-engine/pkg/runtime/terminal/export"
)

// Generator is the rendering pipeline as the CLI sees it.
type Generator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportArtifact, error)
}

type RenderCmd struct {
	inputPath string
	outputDir string
	timeout   time.Duration
	generator Generator
	reporter  *export.Reporter
}

func NewRenderCmd(generator Generator, reporter *export.Reporter) *cobra.Command {
	rc := &RenderCmd{generator: generator, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report payload file to PDF",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.inputPath, "input", "", "Path to the report payload JSON file")
	cmd.Flags().StringVar(&rc.outputDir, "output", ".", "Directory to write the PDF into")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 90*time.Second, "Overall rendering deadline")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (rc *RenderCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	defer cancel()

	raw, err := os.ReadFile(rc.inputPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	var payload api.ReportRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	req := payload.ToDomain()

	artifact, err := rc.generator.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	outputPath := filepath.Join(rc.outputDir, artifact.Filename)
	if err := os.WriteFile(outputPath, artifact.Bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}

	return rc.reporter.Handle(&export.RenderSummary{
		Patient:    req.PatientName,
		OutputPath: outputPath,
		SizeBytes:  len(artifact.Bytes),
		Sessions:   len(req.Sessions),
		Charts:     len(chart.BuildSpecs(req.Sessions, req.Therapies)),
	})
}
