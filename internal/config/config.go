// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// GPS modes.
const (
	GPSModeStream = "stream"
	GPSModePoll   = "poll"
)

// EnvProduction is the APP_ENV value that enables hardware access and real
// publishing.
const EnvProduction = "production"

// Config holds all application configuration values.
type Config struct {
	Env string

	// Capture
	WatchDir        string
	WatchExtensions []string
	WatchSettle     time.Duration

	// Course
	CourseFile        string
	OffRouteRadiusM   float64
	WaypointRadiusM   float64
	ProgressDivisorKm float64

	// GPS / modem
	GPSMode          string
	GPSSerialPort    string
	GPSBaudRate      int
	ModemSerialPort  string
	ModemBaudRate    int
	ModemReadTimeout time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Drainer
	DrainInterval  time.Duration
	PublishTimeout time.Duration
	ProbeHost      string
	ProbeTimeout   time.Duration

	// Resize (0 disables)
	ResizeMaxDimension int
	ResizeJPEGQuality  int

	// Social
	SocialBaseURL     string
	SocialAccessToken string
	CaptionSuffix     string

	// MQTT (empty broker disables telemetry)
	MQTTBroker   string
	MQTTClientID string
	TopicGPS     string
	TopicQueue   string

	// Web Server (empty disables)
	WebServerAddr string

	// Display
	DisplayEnabled        bool
	DisplayUpdateInterval time.Duration

	// Logging
	LogFile  string
	LogLevel string
}

// Keys lists every recognised configuration key. Each may also be set
// through an environment variable of the same name, which wins over the file.
var Keys = []string{
	"APP_ENV",
	"WATCH_DIR", "WATCH_EXTENSIONS", "WATCH_SETTLE_MS",
	"COURSE_FILE", "OFF_ROUTE_RADIUS_M", "WAYPOINT_RADIUS_M", "PROGRESS_DIVISOR_KM",
	"GPS_MODE", "GPS_SERIAL_PORT", "GPS_BAUD_RATE",
	"MODEM_SERIAL_PORT", "MODEM_BAUD_RATE", "MODEM_READ_TIMEOUT_MS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"DRAIN_INTERVAL_MS", "PUBLISH_TIMEOUT_MS", "PROBE_HOST", "PROBE_TIMEOUT_MS",
	"RESIZE_MAX_DIMENSION", "RESIZE_JPEG_QUALITY",
	"SOCIAL_BASE_URL", "SOCIAL_ACCESS_TOKEN", "CAPTION_SUFFIX",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "TOPIC_GPS", "TOPIC_QUEUE",
	"WEB_SERVER_ADDR",
	"DISPLAY_ENABLED", "DISPLAY_UPDATE_INTERVAL",
	"LOG_FILE", "LOG_LEVEL",
}

// Default returns the configuration used for keys that are not set.
func Default() *Config {
	return &Config{
		Env:                   "development",
		WatchExtensions:       []string{".jpg", ".jpeg", ".mp4"},
		WatchSettle:           2 * time.Second,
		OffRouteRadiusM:       1000,
		WaypointRadiusM:       100,
		ProgressDivisorKm:     100,
		GPSMode:               GPSModeStream,
		GPSSerialPort:         "/dev/ttyUSB1",
		GPSBaudRate:           115200,
		ModemSerialPort:       "/dev/ttyUSB2",
		ModemBaudRate:         115200,
		ModemReadTimeout:      3 * time.Second,
		RedisAddr:             "localhost:6379",
		DrainInterval:         10 * time.Second,
		PublishTimeout:        5 * time.Minute,
		ProbeHost:             "google.com",
		ProbeTimeout:          5 * time.Second,
		ResizeMaxDimension:    2048,
		ResizeJPEGQuality:     85,
		MQTTClientID:          "racecam",
		TopicGPS:              "racecam/gps",
		TopicQueue:            "racecam/queue",
		WebServerAddr:         ":8080",
		DisplayUpdateInterval: time.Second,
		LogLevel:              "info",
	}
}

// Production reports whether hardware access and real publishing are on.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads a KEY=VALUE configuration file on top of Default, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(configPath string) (*Config, error) {
	values := map[string]string{}
	if configPath != "" {
		fileValues, err := godotenv.Read(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		values = fileValues
	}

	known := make(map[string]bool, len(Keys))
	for _, key := range Keys {
		known[key] = true
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	cfg := Default()
	for key := range values {
		if !known[key] {
			return nil, fmt.Errorf("unknown config key: %q", key)
		}
	}
	// fixed order so the first reported error is stable
	for _, key := range Keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "APP_ENV":
		c.Env = value

	// Capture
	case "WATCH_DIR":
		c.WatchDir = value
	case "WATCH_EXTENSIONS":
		c.WatchExtensions = splitList(value)
	case "WATCH_SETTLE_MS":
		c.WatchSettle, err = parseMillis(key, value)

	// Course
	case "COURSE_FILE":
		c.CourseFile = value
	case "OFF_ROUTE_RADIUS_M":
		c.OffRouteRadiusM, err = parsePositive(key, value)
	case "WAYPOINT_RADIUS_M":
		c.WaypointRadiusM, err = parsePositive(key, value)
	case "PROGRESS_DIVISOR_KM":
		c.ProgressDivisorKm, err = parsePositive(key, value)

	// GPS / modem
	case "GPS_MODE":
		c.GPSMode = strings.ToLower(value)
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)
	case "MODEM_SERIAL_PORT":
		c.ModemSerialPort = value
	case "MODEM_BAUD_RATE":
		c.ModemBaudRate, err = parseInt(key, value)
	case "MODEM_READ_TIMEOUT_MS":
		c.ModemReadTimeout, err = parseMillis(key, value)

	// Redis
	case "REDIS_ADDR":
		c.RedisAddr = value
	case "REDIS_PASSWORD":
		c.RedisPassword = value
	case "REDIS_DB":
		c.RedisDB, err = parseInt(key, value)

	// Drainer
	case "DRAIN_INTERVAL_MS":
		c.DrainInterval, err = parseMillis(key, value)
	case "PUBLISH_TIMEOUT_MS":
		c.PublishTimeout, err = parseMillis(key, value)
	case "PROBE_HOST":
		c.ProbeHost = value
	case "PROBE_TIMEOUT_MS":
		c.ProbeTimeout, err = parseMillis(key, value)

	// Resize
	case "RESIZE_MAX_DIMENSION":
		c.ResizeMaxDimension, err = parseInt(key, value)
	case "RESIZE_JPEG_QUALITY":
		c.ResizeJPEGQuality, err = parseInt(key, value)

	// Social
	case "SOCIAL_BASE_URL":
		c.SocialBaseURL = value
	case "SOCIAL_ACCESS_TOKEN":
		c.SocialAccessToken = value
	case "CAPTION_SUFFIX":
		c.CaptionSuffix = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_QUEUE":
		c.TopicQueue = value

	// Web Server
	case "WEB_SERVER_ADDR":
		c.WebServerAddr = value

	// Display
	case "DISPLAY_ENABLED":
		c.DisplayEnabled, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseMillis(key, value)

	// Logging
	case "LOG_FILE":
		c.LogFile = value
	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set and values are usable.
func (c *Config) validate() error {
	if c.WatchDir == "" {
		return fmt.Errorf("WATCH_DIR is required")
	}
	if c.CourseFile == "" {
		return fmt.Errorf("COURSE_FILE is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.GPSMode != GPSModeStream && c.GPSMode != GPSModePoll {
		return fmt.Errorf("GPS_MODE must be %q or %q, got %q", GPSModeStream, GPSModePoll, c.GPSMode)
	}
	if c.GPSBaudRate <= 0 || c.ModemBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE and MODEM_BAUD_RATE must be positive")
	}
	if c.ResizeMaxDimension < 0 {
		return fmt.Errorf("RESIZE_MAX_DIMENSION must not be negative")
	}
	if c.ResizeJPEGQuality < 1 || c.ResizeJPEGQuality > 100 {
		return fmt.Errorf("RESIZE_JPEG_QUALITY must be between 1 and 100")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if c.Production() {
		if c.SocialBaseURL == "" {
			return fmt.Errorf("SOCIAL_BASE_URL is required in production")
		}
		if c.SocialAccessToken == "" {
			return fmt.Errorf("SOCIAL_ACCESS_TOKEN is required in production")
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func parseMillis(key, value string) (time.Duration, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parsePositive(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if !(f > 0) {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return f, nil
}
