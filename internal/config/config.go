package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 控制面配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// BLEConfig BLE 目标设备配置。address 与 name 二选一。
type BLEConfig struct {
	Address     string        `mapstructure:"address"`
	Name        string        `mapstructure:"name"`
	ServiceUUID string        `mapstructure:"serviceUUID"`
	WriteUUID   string        `mapstructure:"writeUUID"`
	NotifyUUID  string        `mapstructure:"notifyUUID"`
	ScanTimeout time.Duration `mapstructure:"scanTimeout"`
}

// BridgeConfig 设备会话配置
type BridgeConfig struct {
	// Transport 传输选择：ble | sim
	Transport    string        `mapstructure:"transport"`
	DeviceID     string        `mapstructure:"deviceId"`
	ResponseWait time.Duration `mapstructure:"responseWait"`
	EventLogSize int           `mapstructure:"eventLogSize"`
}

// SimulatorConfig 设备模拟器配置
type SimulatorConfig struct {
	Enable       bool   `mapstructure:"enable"`
	Addr         string `mapstructure:"addr"`
	NotifyPerSec int    `mapstructure:"notifyPerSec"`
	ScriptCSV    string `mapstructure:"scriptCsv"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	BLE       BLEConfig       `mapstructure:"ble"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试环境变量 RF320_CONFIG；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("RF320_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// 环境变量覆盖：前缀 RF320_，点号替换为下划线
	v.SetEnvPrefix("RF320")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rf320-bridge")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("ble.name", "RF320")
	v.SetDefault("ble.serviceUUID", "0000ffe0-0000-1000-8000-00805f9b34fb")
	v.SetDefault("ble.writeUUID", "0000ffe2-0000-1000-8000-00805f9b34fb")
	v.SetDefault("ble.notifyUUID", "0000ffe1-0000-1000-8000-00805f9b34fb")
	v.SetDefault("ble.scanTimeout", "15s")

	v.SetDefault("bridge.transport", "ble")
	v.SetDefault("bridge.deviceId", "rf320")
	v.SetDefault("bridge.responseWait", "50ms")
	v.SetDefault("bridge.eventLogSize", 128)

	v.SetDefault("simulator.enable", false)
	v.SetDefault("simulator.addr", "127.0.0.1:7320")
	v.SetDefault("simulator.notifyPerSec", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/rf320-bridge.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
