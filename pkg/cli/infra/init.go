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

// Package infra provides operations and definitions for the
// local infrastructure for foodlens
package infra

import (
	"time"

	"github.com/foodlens/foodlens/pkg/cli/config"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/migrate"
	"github.com/foodlens/foodlens/pkg/cli/network"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/foodlens/foodlens/pkg/cli/utils"
	"github.com/foodlens/foodlens/pkg/clock"
	"github.com/foodlens/foodlens/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:54321"
)

// RunEFunc is a function type of foodlens commands
type RunEFunc func(*cobra.Command, []string) error

func getPaths() context.Paths {
	return context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}
}

// Init initializes the foodlens environment and returns a new context.
// apiEndpoint is written to a newly created config file and, if not empty,
// overrides the configured endpoint. dbPath overrides the database location.
func Init(versionTag, apiEndpoint, dbPath string) (*context.FoodlensCtx, error) {
	paths := getPaths()

	if err := initFiles(paths, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	cf, err := config.Read(paths)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	if dbPath == "" {
		dbPath = context.DBPath(paths)
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to db")
	}

	if _, err := migrate.Run(db); err != nil {
		return nil, errors.Wrap(err, "running migration")
	}

	ctx, err := setupCtx(paths, versionTag, db, cf)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}
	if apiEndpoint != "" {
		ctx.APIEndpoint = apiEndpoint
	}

	if ctx.UserID != "" {
		if err := session.Start(db, ctx.UserID); err != nil {
			return nil, errors.Wrap(err, "starting the session")
		}
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx builds the context from the config file and the stored session
func setupCtx(paths context.Paths, versionTag string, db *database.DB, cf config.Config) (context.FoodlensCtx, error) {
	s, err := session.Load(db)
	if err != nil {
		return context.FoodlensCtx{}, errors.Wrap(err, "loading the session")
	}

	timeout := time.Duration(cf.SyncTimeout) * time.Second

	return context.FoodlensCtx{
		Paths:         paths,
		Version:       versionTag,
		DB:            db,
		Clock:         clock.New(),
		HTTPClient:    network.NewRateLimitedHTTPClient(network.DefaultRateLimitPerSecond, network.DefaultRateLimitBurst, timeout),
		APIEndpoint:   cf.APIEndpoint,
		APIKey:        cf.APIKey,
		FDCAPIKey:     cf.FDCAPIKey,
		AppName:       cf.AppName,
		AppEmail:      cf.AppEmail,
		LookupTTLDays: cf.LookupTTLDays,
		UserID:        s.UserID,
		SessionToken:  s.Token,
	}, nil
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(paths context.Paths, apiEndpoint string) error {
	path := config.GetPath(paths)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	if err := config.Write(paths, config.Default(endpoint)); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// initFiles creates, if necessary, the foodlens directories and files inside
func initFiles(paths context.Paths, apiEndpoint string) error {
	if err := context.InitDirs(paths); err != nil {
		return errors.Wrap(err, "creating the foodlens dirs")
	}
	if err := initConfigFile(paths, apiEndpoint); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}
