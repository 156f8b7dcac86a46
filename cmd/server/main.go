package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-world/internal/api"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/driver"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/observability"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию GAME_CONFIG)")
	flag.Parse()

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.SetDefaultLevel(level)
	for _, component := range []string{"world", "mesh", "api", "driver"} {
		logging.GetComponentLogger(component).SetConsoleLevel(level)
	}

	logging.Info("🧱 Запуск voxel-world сервера")

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry := observability.ShutdownFunc(observability.NoopShutdown)
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("инициализация телеметрии: %w", err)
		}
		shutdownTelemetry = shutdown
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	// === МИР ===
	table, err := cfg.BlockTable()
	if err != nil {
		return fmt.Errorf("таблица блоков: %w", err)
	}
	gen, err := cfg.NewGenerator(table)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	renderer := render.NewMemoryRenderer()
	w, err := world.NewWorld(cfg.Settings(), table, cfg.Material(), gen,
		world.WithRenderer(renderer),
		world.WithRegisterer(registry),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	started := time.Now()
	if err := w.Initialize(); err != nil {
		return fmt.Errorf("инициализация мира: %w", err)
	}
	logging.Info("✅ Мир готов за %s: %d блоков в таблице, генератор %s",
		time.Since(started), table.Len(), cfg.World.Generator)

	// === REST API ===
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server, err := api.NewRestServer(api.Config{
		Port:     restPort,
		World:    w,
		Renderer: renderer,
		Registry: registry,
		Tracing:  cfg.Telemetry.Enabled,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// === ДРАЙВЕР НАБЛЮДАТЕЛЯ ===
	driverDone := make(chan struct{})
	if cfg.Driver.Enabled {
		orbit := driver.Orbit{
			Center: cfg.Settings().SpawnPoint(),
			Radius: cfg.Driver.OrbitRadius,
			Period: time.Duration(cfg.Driver.OrbitPeriodSec * float32(time.Second)),
		}
		d := driver.New(w, orbit, cfg.Driver.TickInterval(), nil)
		go func() {
			d.Run(ctx)
			close(driverDone)
		}()
	} else {
		close(driverDone)
	}

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📊 Метрики: http://localhost%s/metrics", restPort)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	case runErr = <-errCh:
		if runErr != nil {
			runErr = fmt.Errorf("REST API: %w", runErr)
		}
		stop()
	}

	// === GRACEFUL SHUTDOWN ===
	<-driverDone
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	return runErr
}
