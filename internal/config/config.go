package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// RedisConfig Redis配置（Addr 为空表示不启用）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 久坐监测服务配置
type Config struct {
	MQTT  MQTTConfig
	Redis RedisConfig

	// 设备接入
	Device struct {
		ID          string // 设备标识，"+" 表示任意设备
		TopicPrefix string // 主题前缀，如 "wiimote"
	}

	// 运动检测与报警升级参数
	Sedentary struct {
		SamplePeriod   time.Duration // 采样周期
		Listen         time.Duration // 每个周期开启红外报告的时长
		LongWindow     time.Duration // 长尺度窗口时长
		ShortThreshold float64       // 短尺度距离阈值
		LongThreshold  float64       // 长尺度距离阈值
		Warn           time.Duration
		Error          time.Duration
		OverrideWindow time.Duration
		OverrideButton uint16 // 覆盖按键位掩码，默认 A
		Calibrate      bool   // 校准显示模式
	}

	// 报警声音
	Audio struct {
		Player     string
		PlayerArgs []string
		WarnSound  string
		ErrorSound string
	}

	// Redis Streams 输出
	Stream struct {
		Alert          string
		Status         string
		MaxLen         int64
		StatusInterval time.Duration
	}

	Log struct {
		Level  string
		Format string
		Output string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "fokusier")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")

	cfg.Device.ID = getEnv("DEVICE_ID", "+")
	cfg.Device.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "wiimote")

	cfg.Audio.Player = getEnv("ALERT_PLAYER", "aplay")
	cfg.Audio.PlayerArgs = strings.Fields(getEnv("ALERT_PLAYER_ARGS", "--quiet"))
	cfg.Audio.WarnSound = getEnv("WARN_SOUND", "warn.wav")
	cfg.Audio.ErrorSound = getEnv("ERROR_SOUND", cfg.Audio.WarnSound)

	cfg.Stream.Alert = getEnv("ALERT_STREAM", "fokusier:alert:stream")
	cfg.Stream.Status = getEnv("STATUS_STREAM", "fokusier:status:stream")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")
	cfg.Log.Output = getEnv("LOG_OUTPUT", "stderr")

	var err error
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Stream.MaxLen, err = getEnvInt64("STREAM_MAXLEN", 1000); err != nil {
		return nil, err
	}
	if cfg.Stream.StatusInterval, err = getEnvMillis("STATUS_PUBLISH_INTERVAL_MS", 5000); err != nil {
		return nil, err
	}

	s := &cfg.Sedentary
	if s.SamplePeriod, err = getEnvMillis("SAMPLE_PERIOD_MS", 100); err != nil {
		return nil, err
	}
	if s.Listen, err = getEnvMillis("LISTEN_MS", 20); err != nil {
		return nil, err
	}
	if s.LongWindow, err = getEnvMillis("LONG_WINDOW_MS", 2000); err != nil {
		return nil, err
	}
	if s.ShortThreshold, err = getEnvFloat("SHORT_THRESHOLD", 5); err != nil {
		return nil, err
	}
	if s.LongThreshold, err = getEnvFloat("LONG_THRESHOLD", 30); err != nil {
		return nil, err
	}
	if s.Warn, err = getEnvSeconds("WARN_SECONDS", 60); err != nil {
		return nil, err
	}
	if s.Error, err = getEnvSeconds("ERROR_SECONDS", 120); err != nil {
		return nil, err
	}
	if s.OverrideWindow, err = getEnvSeconds("OVERRIDE_SECONDS", 300); err != nil {
		return nil, err
	}
	button, err := getEnvInt64("OVERRIDE_BUTTON", 0x0008)
	if err != nil {
		return nil, err
	}
	if button < 1 || button > 0xFFFF {
		return nil, fmt.Errorf("invalid OVERRIDE_BUTTON: %#x is outside 0x1..0xffff", button)
	}
	s.OverrideButton = uint16(button)
	if s.Calibrate, err = getEnvBool("CALIBRATE", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	s := c.Sedentary
	if s.SamplePeriod <= 0 {
		return errors.New("sample period must be positive")
	}
	if s.Listen <= 0 || s.Listen >= s.SamplePeriod {
		return fmt.Errorf("listen interval %s must be positive and shorter than sample period %s", s.Listen, s.SamplePeriod)
	}
	if s.LongWindow < s.SamplePeriod {
		return fmt.Errorf("long window %s must not be shorter than sample period %s", s.LongWindow, s.SamplePeriod)
	}
	if s.ShortThreshold < 0 || s.LongThreshold < 0 {
		return errors.New("distance thresholds must not be negative")
	}
	if s.Warn <= 0 || s.Error <= 0 {
		return errors.New("warn and error durations must be positive")
	}
	if s.OverrideWindow < 0 {
		return errors.New("override window must not be negative")
	}
	if s.OverrideButton == 0 {
		return errors.New("override button mask must not be zero")
	}
	if c.Device.TopicPrefix == "" {
		return errors.New("MQTT topic prefix is required")
	}
	return nil
}

// WindowSize 长尺度窗口容量（采样周期数）
func (c *Config) WindowSize() int {
	return int(c.Sedentary.LongWindow / c.Sedentary.SamplePeriod)
}

// RedisEnabled 是否配置了 Redis
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	// 支持 0x 前缀（按键掩码）
	n, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvMillis(key string, defaultValue int64) (time.Duration, error) {
	n, err := getEnvInt64(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func getEnvSeconds(key string, defaultValue int64) (time.Duration, error) {
	n, err := getEnvInt64(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
