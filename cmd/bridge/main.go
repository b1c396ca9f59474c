package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/rf320-bridge/internal/api"
	cfgpkg "github.com/taoyao-code/rf320-bridge/internal/config"
	"github.com/taoyao-code/rf320-bridge/internal/coremodel"
	"github.com/taoyao-code/rf320-bridge/internal/device"
	"github.com/taoyao-code/rf320-bridge/internal/health"
	"github.com/taoyao-code/rf320-bridge/internal/httpserver"
	"github.com/taoyao-code/rf320-bridge/internal/logging"
	"github.com/taoyao-code/rf320-bridge/internal/metrics"
	"github.com/taoyao-code/rf320-bridge/internal/simulator"
	"github.com/taoyao-code/rf320-bridge/internal/transport"
	bletransport "github.com/taoyao-code/rf320-bridge/internal/transport/ble"
	"github.com/taoyao-code/rf320-bridge/internal/transport/tcpbridge"
)

func main() {
	cfgPath := flag.String("config", "", "config file path (default: RF320_CONFIG or configs/example.yaml)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// 4) 可选：内置设备模拟器（联调/演示）
	var sim *simulator.Simulator
	if cfg.Simulator.Enable || cfg.Bridge.Transport == "sim" {
		script := simulator.DefaultScript()
		if cfg.Simulator.ScriptCSV != "" {
			script, err = simulator.LoadScriptCSV(cfg.Simulator.ScriptCSV)
			if err != nil {
				log.Fatal("load simulator script", zap.Error(err))
			}
		}
		sim = simulator.New(simulator.Config{
			Addr:         cfg.Simulator.Addr,
			NotifyPerSec: cfg.Simulator.NotifyPerSec,
			Script:       script,
		}, log.Named("simulator"))
		if err := sim.Start(); err != nil {
			log.Fatal("simulator start", zap.Error(err))
		}
	}

	// 5) 传输层选择
	var tr transport.Transport
	switch cfg.Bridge.Transport {
	case "sim":
		tr = tcpbridge.New(sim.Addr(), 5*time.Second, 3*time.Second, log.Named("tcpbridge"))
	case "ble":
		tr = bletransport.New(bletransport.Config{
			Address:     cfg.BLE.Address,
			Name:        cfg.BLE.Name,
			ServiceUUID: cfg.BLE.ServiceUUID,
			WriteUUID:   cfg.BLE.WriteUUID,
			NotifyUUID:  cfg.BLE.NotifyUUID,
			ScanTimeout: cfg.BLE.ScanTimeout,
		}, log.Named("ble"))
	default:
		log.Fatal("unknown transport", zap.String("transport", cfg.Bridge.Transport))
	}

	// 6) 设备会话
	ctrl := device.NewController(tr, log.Named("device"), device.Options{
		DeviceID:     coremodel.DeviceID(cfg.Bridge.DeviceID),
		ResponseWait: cfg.Bridge.ResponseWait,
		EventLogSize: cfg.Bridge.EventLogSize,
		Metrics:      appMetrics,
	})

	// 7) HTTP 控制面
	h := api.NewHandler(ctrl, log.Named("api"))
	agg := health.NewAggregator(health.NewSessionChecker(ctrl))
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, agg,
		func(r *gin.Engine) { api.RegisterRoutes(r, h) })

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := ctrl.Start(ctx); err != nil {
		log.Error("device connect failed", zap.Error(err))
	}

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = ctrl.Close()
	if sim != nil {
		_ = sim.Shutdown()
	}
}
