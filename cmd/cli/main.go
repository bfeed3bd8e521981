package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/qtherapy/report-engine/pkg/render"
	"github.com/qtherapy/report-engine/pkg/runtime/terminal"
	"github.com/qtherapy/report-engine/pkg/services/config"
	"github.com/qtherapy/report-engine/pkg/services/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	chromeOpts := render.DefaultChromeOptions()
	chromeOpts.ExecPath = cfg.ChromePath
	engine := render.NewChromeEngine(chromeOpts)

	driver := render.NewDriver(engine, render.Options{
		ChartLibraryTimeout: cfg.ChartLibraryTimeout,
		ChartTimeout:        cfg.ChartTimeout,
		PollInterval:        cfg.PollInterval,
		SettleDelay:         cfg.SettleDelay,
	})

	cli := terminal.NewCLI(terminal.Options{
		Generator: report.NewGenerator(driver, report.Options{
			ChartJSURL:    cfg.ChartJSURL,
			GlobalTimeout: cfg.GlobalTimeout,
		}),
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
