package main

import (
	"os"

	"github.com/custodia-labs/extrakt/internal/adapters/driving/cli"
	"github.com/custodia-labs/extrakt/internal/app"
)

func main() {
	var engine *app.App

	cli.SetInitializer(func(configPath string) (*cli.Services, error) {
		a, err := app.New(configPath)
		if err != nil {
			return nil, err
		}
		engine = a
		return &cli.Services{
			Extraction: a.Extraction,
			Detector:   a.Detector,
			Plugins:    a.Registry,
			Config:     &a.Config.Extraction,
		}, nil
	})

	err := cli.Execute()
	if engine != nil {
		engine.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
