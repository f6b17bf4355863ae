package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/aimehq/aime/internal/config"
)

func TestConfigLoader_File(t *testing.T) {
	convey.Convey("Given a YAML file and an env override", t, func() {
		path := createTempConfigFile(t, "addr: \":7000\"\ndefault_partner: gima\nenv: staging\n")
		t.Setenv("AIME_CONFIG", path)
		t.Setenv("AIME_ENV", "production")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then env wins over the file and the file over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			convey.So(cfg.DefaultPartner, convey.ShouldEqual, "gima")
			convey.So(cfg.Env, convey.ShouldEqual, "production")
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
		})
	})
}

func TestConfigLoader_Comments(t *testing.T) {
	convey.Convey("Given a YAML file with comments", t, func() {
		path := createTempConfigFile(t, `
# partner defaults
addr: ":9090"  # inline
watch_fixtures: true
reload_debounce_ms: 50
`)
		t.Setenv("AIME_CONFIG", path)

		cfg, err := config.Load(context.Background())

		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
		convey.So(cfg.WatchFixtures, convey.ShouldBeTrue)
		convey.So(cfg.ReloadDebounceMS, convey.ShouldEqual, 50)
	})
}

func TestConfigLoader_MissingFile(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("AIME_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := config.Load(context.Background())

		convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
	})
}

func TestConfigLoader_EmptyAddr(t *testing.T) {
	convey.Convey("Given a file that blanks the address", t, func() {
		t.Setenv("AIME_CONFIG", createTempConfigFile(t, "addr: \"\"\n"))

		cfg, err := config.Load(context.Background())

		convey.So(cfg, convey.ShouldBeNil)
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, "addr is empty")
	})
}

func TestConfigLoader_NegativeThreshold(t *testing.T) {
	convey.Convey("Given an invalid threshold", t, func() {
		t.Setenv("AIME_BURST_REACH_THRESHOLD", "-1")

		_, err := config.Load(context.Background())

		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

// Helper functions.

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aime-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
