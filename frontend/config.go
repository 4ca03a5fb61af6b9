package frontend

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/a8m/envsubst"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// DataIntegrationMode selects which external data source, if any, is fused
// into the scan-to-scan estimator as a motion prior.
type DataIntegrationMode string

const (
	// IntegrationNone runs pure lidar odometry.
	IntegrationNone DataIntegrationMode = "none"
	// IntegrationOdometry fuses a buffered external odometry source.
	IntegrationOdometry DataIntegrationMode = "odometry"
)

// MapPublishmentConfig controls periodic full-map publication.
type MapPublishmentConfig struct {
	// Meters is the number of keyframe insertions between map publications.
	Meters int `json:"meters"`
	// Enabled gates map publication entirely.
	Enabled bool `json:"b_publish_map"`
}

// DataIntegrationConfig selects and bounds external data integration.
type DataIntegrationConfig struct {
	Mode DataIntegrationMode `json:"mode"`
	// MaxNumberOfCalls is how many consecutive failed odometry lookups are
	// tolerated before integration is disabled for the rest of the run.
	// Zero means never fall back.
	MaxNumberOfCalls int `json:"max_number_of_calls"`
}

// QueueConfig sizes the intake channels used by the background run loop.
type QueueConfig struct {
	LidarQueueSize int `json:"lidar_queue_size"`
	OdomQueueSize  int `json:"odom_queue_size"`
}

// Config is the full configuration surface of the frontend.
type Config struct {
	Verbose bool `json:"b_verbose"`

	TranslationThreshold float64 `json:"translation_threshold_kf"`
	RotationThreshold    float64 `json:"rotation_threshold_kf"`

	OpenSpacePointThreshold int `json:"number_of_points_open_space"`

	MapPublishment MapPublishmentConfig `json:"map_publishment"`

	FixedFrameID    string `json:"fixed_frame_id"`
	BaseFrameID     string `json:"base_frame_id"`
	OdometryFrameID string `json:"odometry_frame_id"`

	Queues QueueConfig `json:"queues"`

	OdometryBufferSizeLimit int           `json:"odometry_buffer_size_limit"`
	OdometryWaitTimeout     time.Duration `json:"odometry_wait_timeout"`

	DataIntegration DataIntegrationConfig `json:"data_integration"`

	EnableTimingProfiling bool `json:"b_enable_computation_time_profiling"`
	PublishDiagnostics    bool `json:"publish_diagnostics"`
}

// DefaultConfig returns a config with workable defaults for everything that
// has one; frame ids still need to be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		TranslationThreshold:    1.0,
		RotationThreshold:       0.63,
		OpenSpacePointThreshold: 10000,
		MapPublishment:          MapPublishmentConfig{Meters: 10, Enabled: true},
		Queues:                  QueueConfig{LidarQueueSize: 10, OdomQueueSize: 100},
		OdometryBufferSizeLimit: 2000,
		DataIntegration:         DataIntegrationConfig{Mode: IntegrationNone},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.TranslationThreshold <= 0 {
		return utils.NewConfigValidationError(path, errors.New("translation_threshold_kf must be positive"))
	}
	if c.RotationThreshold <= 0 {
		return utils.NewConfigValidationError(path, errors.New("rotation_threshold_kf must be positive"))
	}
	if c.OpenSpacePointThreshold < 0 {
		return utils.NewConfigValidationError(path, errors.New("number_of_points_open_space cannot be negative"))
	}
	if c.MapPublishment.Enabled && c.MapPublishment.Meters <= 0 {
		return utils.NewConfigValidationError(path, errors.New("map_publishment.meters must be positive when publication is enabled"))
	}
	if c.FixedFrameID == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "fixed_frame_id")
	}
	if c.BaseFrameID == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "base_frame_id")
	}
	if c.Queues.LidarQueueSize <= 0 {
		return utils.NewConfigValidationError(path, errors.New("queues.lidar_queue_size must be positive"))
	}
	if c.Queues.OdomQueueSize <= 0 {
		return utils.NewConfigValidationError(path, errors.New("queues.odom_queue_size must be positive"))
	}
	switch c.DataIntegration.Mode {
	case IntegrationNone:
	case IntegrationOdometry:
		if c.OdometryFrameID == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "odometry_frame_id")
		}
		if c.OdometryBufferSizeLimit <= 0 {
			return utils.NewConfigValidationError(path, errors.New("odometry_buffer_size_limit must be positive"))
		}
		if c.DataIntegration.MaxNumberOfCalls < 0 {
			return utils.NewConfigValidationError(path, errors.New("data_integration.max_number_of_calls cannot be negative"))
		}
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown data_integration.mode %q", c.DataIntegration.Mode))
	}
	return nil
}

// ReadConfig reads a config from the given JSON file, substituting
// environment variables referenced in it.
func ReadConfig(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	decoder := json.NewDecoder(bytes.NewReader(buf))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %q", filePath)
	}
	if err := cfg.Validate(filePath); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFromAttributes decodes a free-form attribute map, as delivered by a
// hosting robot configuration, into a validated Config.
func ConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	if err := cfg.Validate("attributes"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
