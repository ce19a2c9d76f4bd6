package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/warp/shift-points/config"
)

var configEnvVars = []string{
	"SHIFTPOINTS_CONFIG",
	"SHIFTPOINTS_ADDR",
	"SHIFTPOINTS_DB_PATH",
	"SHIFTPOINTS_LOG_LEVEL",
	"SHIFTPOINTS_LOG_FORMAT",
	"SHIFTPOINTS_RULE_SET",
	"SHIFTPOINTS_METRICS_ENABLED",
	"SHIFTPOINTS_RECOMPUTE_INTERVAL",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "points.db")
				convey.So(cfg.RuleSet, convey.ShouldEqual, "mwa-2025.1")
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
				convey.So(cfg.Origins(), convey.ShouldHaveLength, 2)
				convey.So(cfg.RecomputeInterval, convey.ShouldEqual, 15*time.Minute)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SHIFTPOINTS_ADDR", ":9090")
			_ = os.Setenv("SHIFTPOINTS_DB_PATH", "/tmp/points.db")
			_ = os.Setenv("SHIFTPOINTS_LOG_FORMAT", "json")
			_ = os.Setenv("SHIFTPOINTS_METRICS_ENABLED", "false")
			_ = os.Setenv("SHIFTPOINTS_RECOMPUTE_INTERVAL", "5m")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/points.db")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.RecomputeInterval, convey.ShouldEqual, 5*time.Minute)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			yamlContent := `
addr: ":7070"
log_level: debug
allowed_origins: "https://points.example.org"
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("SHIFTPOINTS_CONFIG", path)
			_ = os.Setenv("SHIFTPOINTS_LOG_LEVEL", "warn")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.Origins(), convey.ShouldResemble, []string{"https://points.example.org"})
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SHIFTPOINTS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail with ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the rule set is unknown", func() {
			_ = os.Setenv("SHIFTPOINTS_RULE_SET", "nope-1999")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
