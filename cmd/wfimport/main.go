// wfimport — импорт workflow n8n через HTTP API.
//
// Использование:
//
//	wfimport [--url URL] [--json] [--env-file FILE] <command> [flags]
//
// Команды:
//
//	import   Загрузить workflow на сервер
//	inspect  Показать сводку файла workflow
//	probe    Проверить доступность сервера
//	history  Журнал импортов
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/wfimport/internal/cli"
	"github.com/shaiso/wfimport/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx = telemetry.WithLogger(ctx, logger)

	code := cli.Execute(ctx, cli.NewRootCmd(version))
	cancel()
	os.Exit(code)
}
