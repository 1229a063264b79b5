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

package login

import (
	stdctx "context"
	"net/url"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/infra"
	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/foodlens/foodlens/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  foodlens login`

var usernameFlag, passwordFlag, apiEndpointFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.FoodlensCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Sign in to sync your pantry and favorites",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&usernameFlag, "username", "u", "", "email address for authentication")
	f.StringVarP(&passwordFlag, "password", "p", "", "password for authentication")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do signs in, stores the session and starts it. It returns the id of the user.
func Do(c stdctx.Context, ctx context.FoodlensCtx, email, password string) (string, error) {
	api := infra.NewClient(ctx)

	token, err := api.Login(c, email, password)
	if err != nil {
		return "", errors.Wrap(err, "requesting session")
	}

	user, err := api.Me(c, token)
	if err != nil {
		return "", errors.Wrap(err, "getting the user")
	}
	if user == nil || user.ID == "" {
		return "", errors.New("the server did not return a user id")
	}

	if err := session.Save(ctx.DB, session.Session{UserID: user.ID, Token: token}); err != nil {
		return "", errors.Wrap(err, "saving session")
	}
	if err := session.Start(ctx.DB, user.ID); err != nil {
		return "", errors.Wrap(err, "starting session")
	}

	return user.ID, nil
}

func getUsername() (string, error) {
	if usernameFlag != "" {
		return usernameFlag, nil
	}

	var ret string
	if err := ui.PromptInput("email", &ret); err != nil {
		return "", errors.Wrap(err, "getting email input")
	}

	return ret, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var ret string
	if err := ui.PromptPassword("password", &ret); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}

	return ret, nil
}

func newRun(ctx context.FoodlensCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		greeting := "Welcome to Foodlens"
		if serverURL := getServerDisplayURL(ctx); serverURL != "" {
			greeting += " (" + serverURL + ")"
		}
		log.Plainf("%s\n", greeting)

		email, err := getUsername()
		if err != nil {
			return err
		}
		if email == "" {
			return errors.New("Email is empty")
		}

		password, err := getPassword()
		if err != nil {
			return err
		}
		if password == "" {
			return errors.New("Password is empty")
		}

		log.Debug("Logging in with email: %s\n", email)

		_, err = Do(cmd.Context(), ctx, email, password)
		if errors.Cause(err) == client.ErrInvalidLogin {
			log.Error("wrong login\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Success("logged in\n")

		return nil
	}
}

// getServerDisplayURL returns the scheme and host of the API endpoint
func getServerDisplayURL(ctx context.FoodlensCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}
