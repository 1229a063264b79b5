/* Copyright 2025 Foodlens Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config reads and writes the foodlens configuration file
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/foodlens/foodlens/pkg/cli/consts"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/utils"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Environment variables overriding the config file
const (
	EnvAPIEndpoint   = "FOODLENS_API_ENDPOINT"
	EnvAPIKey        = "FOODLENS_API_KEY"
	EnvFDCAPIKey     = "FOODLENS_FDC_API_KEY"
	EnvLookupTTLDays = "FOODLENS_LOOKUP_TTL_DAYS"
)

// Config holds foodlens configuration
type Config struct {
	APIEndpoint   string `yaml:"apiEndpoint"`
	APIKey        string `yaml:"apiKey"`
	FDCAPIKey     string `yaml:"fdcApiKey,omitempty"`
	AppName       string `yaml:"appName"`
	AppEmail      string `yaml:"appEmail"`
	LookupTTLDays int    `yaml:"lookupTTLDays"`
	// SyncTimeout is the HTTP timeout of remote calls, in seconds
	SyncTimeout int `yaml:"syncTimeout"`
}

// Default returns the config written on first run
func Default(apiEndpoint string) Config {
	return Config{
		APIEndpoint:   apiEndpoint,
		AppName:       "foodlens",
		LookupTTLDays: consts.DefaultLookupTTLDays,
		SyncTimeout:   30,
	}
}

// Dir returns the directory holding the config file
func Dir(paths context.Paths) string {
	return filepath.Join(paths.Config, consts.FoodlensDirName)
}

// GetPath returns the path to the foodlens config file
func GetPath(paths context.Paths) string {
	return filepath.Join(Dir(paths), consts.ConfigFilename)
}

// Read reads the config file, then applies the overrides of the .env file
// next to it and of the environment. A missing lookupTTLDays defaults to
// consts.DefaultLookupTTLDays; zero disables expiry of cached lookups.
func Read(paths context.Paths) (Config, error) {
	ret := Config{LookupTTLDays: consts.DefaultLookupTTLDays}

	b, err := os.ReadFile(GetPath(paths))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	if err := loadEnvFile(paths); err != nil {
		return ret, err
	}
	if err := applyEnv(&ret); err != nil {
		return ret, err
	}

	return ret, nil
}

// loadEnvFile loads the .env file into the environment. Variables already
// set in the environment are not overwritten.
func loadEnvFile(paths context.Paths) error {
	p := filepath.Join(Dir(paths), consts.EnvFilename)

	ok, err := utils.FileExists(p)
	if err != nil {
		return errors.Wrap(err, "checking env file")
	}
	if !ok {
		return nil
	}

	if err := godotenv.Load(p); err != nil {
		return errors.Wrapf(err, "loading %s", p)
	}

	return nil
}

func applyEnv(cf *Config) error {
	if v := os.Getenv(EnvAPIEndpoint); v != "" {
		cf.APIEndpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cf.APIKey = v
	}
	if v := os.Getenv(EnvFDCAPIKey); v != "" {
		cf.FDCAPIKey = v
	}
	if v := os.Getenv(EnvLookupTTLDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", EnvLookupTTLDays)
		}
		cf.LookupTTLDays = days
	}

	return nil
}

// Write writes the config to the config file
func Write(paths context.Paths, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := os.WriteFile(GetPath(paths), b, 0600); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
