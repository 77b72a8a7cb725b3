package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Profile is a named output destination: where reports may be written
// and where run logs are retained.
type Profile struct {
	AllowedOutputDir string
	LogDir           string
}

type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewProfileRegistry loads named output profiles from an ini file.
func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section := r.cfg.Section(name)
	if section == nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	return &Profile{
		AllowedOutputDir: section.Key("allowed_output_dir").String(),
		LogDir:           section.Key("log_dir").String(),
	}, nil
}
