package frontend_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/lidarfrontend/frontend"
)

func TestConfigValidate(t *testing.T) {
	cfg := frontend.DefaultConfig()
	err := cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "fixed_frame_id")

	cfg.FixedFrameID = "map"
	err = cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "base_frame_id")

	cfg.BaseFrameID = "base"
	test.That(t, cfg.Validate("test"), test.ShouldBeNil)

	cfg.TranslationThreshold = 0
	err = cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "translation_threshold_kf")
	cfg.TranslationThreshold = 1

	cfg.MapPublishment.Meters = 0
	err = cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "map_publishment.meters")
	// zero is fine when publication is off
	cfg.MapPublishment.Enabled = false
	test.That(t, cfg.Validate("test"), test.ShouldBeNil)
	cfg.MapPublishment = frontend.MapPublishmentConfig{Meters: 10, Enabled: true}

	cfg.DataIntegration.Mode = "wheel"
	err = cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "data_integration.mode")

	cfg.DataIntegration.Mode = frontend.IntegrationOdometry
	err = cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "odometry_frame_id")
	cfg.OdometryFrameID = "odom"
	test.That(t, cfg.Validate("test"), test.ShouldBeNil)
}

func TestReadConfig(t *testing.T) {
	t.Setenv("TEST_FIXED_FRAME", "map")
	contents := `{
		"b_verbose": true,
		"translation_threshold_kf": 0.5,
		"rotation_threshold_kf": 0.3,
		"fixed_frame_id": "${TEST_FIXED_FRAME}",
		"base_frame_id": "base",
		"map_publishment": {"meters": 5, "b_publish_map": true}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	cfg, err := frontend.ReadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Verbose, test.ShouldBeTrue)
	test.That(t, cfg.TranslationThreshold, test.ShouldEqual, 0.5)
	test.That(t, cfg.FixedFrameID, test.ShouldEqual, "map")
	test.That(t, cfg.MapPublishment.Meters, test.ShouldEqual, 5)
	// defaults survive for fields the file does not mention
	test.That(t, cfg.OpenSpacePointThreshold, test.ShouldEqual, 10000)
}

func TestReadConfigRejectsUnknownFields(t *testing.T) {
	contents := `{"fixed_frame_id": "map", "base_frame_id": "base", "not_a_field": 1}`
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	_, err := frontend.ReadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not_a_field")
}

func TestReadConfigInvalidContentFailsValidation(t *testing.T) {
	contents := `{"fixed_frame_id": "map", "base_frame_id": "base", "translation_threshold_kf": -1}`
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	_, err := frontend.ReadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "translation_threshold_kf")
}

func TestConfigFromAttributes(t *testing.T) {
	cfg, err := frontend.ConfigFromAttributes(map[string]interface{}{
		"fixed_frame_id":           "map",
		"base_frame_id":            "base",
		"translation_threshold_kf": 0.25,
		"data_integration": map[string]interface{}{
			"mode":                "odometry",
			"max_number_of_calls": 5,
		},
		"odometry_frame_id": "odom",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.TranslationThreshold, test.ShouldEqual, 0.25)
	test.That(t, cfg.DataIntegration.Mode, test.ShouldEqual, frontend.IntegrationOdometry)
	test.That(t, cfg.DataIntegration.MaxNumberOfCalls, test.ShouldEqual, 5)

	_, err = frontend.ConfigFromAttributes(map[string]interface{}{"fixed_frame_id": "map"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "base_frame_id")
}
