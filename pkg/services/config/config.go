// Package config loads runctl profile files. A profile names the
// provider to use plus provider-specific settings; defaults keep a bare
// profile usable out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/arclabs561/runctl/pkg/errdefs"
)

const (
	DefaultProvider = "aws"
	DefaultRegion   = "us-east-1"
)

type Profile struct {
	Provider         string `mapstructure:"provider"`
	Region           string `mapstructure:"region"`
	AWSProfile       string `mapstructure:"aws_profile"`
	RunPodEndpoint   string `mapstructure:"runpod_endpoint"`
	RunPodAPIKeyEnv  string `mapstructure:"runpod_api_key_env"`
	CheckpointBucket string `mapstructure:"checkpoint_bucket"`
	MinAgeMinutes    int    `mapstructure:"min_age_minutes"`
}

// MinAge returns the cleanup grace period configured by the profile.
func (p *Profile) MinAge() time.Duration {
	return time.Duration(p.MinAgeMinutes) * time.Minute
}

// LoadProfile loads a profile from the specified path.
func LoadProfile(profilePath string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)

	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("min_age_minutes", 5)
	v.SetDefault("runpod_endpoint", "https://rest.runpod.io/v1")
	v.SetDefault("runpod_api_key_env", "RUNPOD_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var profile Profile
	if err := v.Unmarshal(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if profile.MinAgeMinutes < 0 {
		return nil, &errdefs.ValidationError{Field: "min_age_minutes", Reason: "must not be negative"}
	}

	if profile.Region == "" {
		profile.Region = sharedConfigRegion(profile.AWSProfile)
	}

	return &profile, nil
}

// sharedConfigRegion resolves the region from the shared ~/.aws/config
// file, falling back to the default region when the file or profile is
// absent.
func sharedConfigRegion(awsProfile string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultRegion
	}

	cfg, err := ini.Load(filepath.Join(homeDir, ".aws", "config"))
	if err != nil {
		return DefaultRegion
	}

	section := "default"
	if awsProfile != "" && awsProfile != "default" {
		section = "profile " + awsProfile
	}

	sec, err := cfg.GetSection(section)
	if err != nil {
		return DefaultRegion
	}
	return sec.Key("region").MustString(DefaultRegion)
}
