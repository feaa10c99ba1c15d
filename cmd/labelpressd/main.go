package main

import (
	"os"

	_ "embed"

	"go.uber.org/fx"

	api "github.com/tigerroll/labelpress/pkg/print/api"
	localStorage "github.com/tigerroll/labelpress/pkg/print/adapter/storage/local"
	config "github.com/tigerroll/labelpress/pkg/print/core/config"
	executor "github.com/tigerroll/labelpress/pkg/print/engine/executor"
	renderer "github.com/tigerroll/labelpress/pkg/print/engine/renderer"
	sweeper "github.com/tigerroll/labelpress/pkg/print/engine/sweeper"
	worker "github.com/tigerroll/labelpress/pkg/print/engine/worker"
	inframetrics "github.com/tigerroll/labelpress/pkg/print/infrastructure/metrics"
	inmemory "github.com/tigerroll/labelpress/pkg/print/infrastructure/repository/inmemory"
	service "github.com/tigerroll/labelpress/pkg/print/service"
	"github.com/tigerroll/labelpress/pkg/print/support/util/logger"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file. It is the base layer of the configuration; environment variables
// override it.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// main is the entry point of the application. It assembles the Fx container
// and runs it until a termination signal arrives; Fx handles SIGINT/SIGTERM
// and drives the registered shutdown hooks.
func main() {
	// Path to the .env file. Use ".env" as default if not set.
	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app := fx.New(
		fx.Supply(
			config.EmbeddedConfig(embeddedConfig),
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),

		logger.Module,
		config.Module,
		localStorage.Module,
		inframetrics.Module,
		inmemory.Module,
		executor.Module,
		renderer.Module,
		worker.Module,
		sweeper.Module,
		service.Module,
		api.Module,
	)

	app.Run()
}
