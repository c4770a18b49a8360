// Package main provides the entry point for the Recipebox API server
package main

import (
	"flag"

	"github.com/alchemorsel/recipebox/internal/infrastructure/container"
	"go.uber.org/fx"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	// Run blocks until SIGINT or SIGTERM and then stops every lifecycle hook
	fx.New(
		fx.Supply(container.ConfigPath(*configPath)),
		container.Module,
	).Run()
}
