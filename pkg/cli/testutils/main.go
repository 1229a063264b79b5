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

// Package testutils provides utilities used in tests
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foodlens/foodlens/pkg/assert"
	"github.com/foodlens/foodlens/pkg/cli/context"
	"github.com/foodlens/foodlens/pkg/cli/database"
	"github.com/foodlens/foodlens/pkg/cli/session"
	"github.com/pkg/errors"
)

// Prompts for user input
const (
	PromptRemoveItem = "remove "
	PromptEmail      = "email"
	PromptPassword   = "password"
)

// Credentials of the user signed in by Login
const (
	UserID       = "user-1"
	SessionToken = "someSessionToken"
)

// Timeout for waiting for prompts in tests
const promptTimeout = 10 * time.Second

// Login simulates a signed in user by storing a session in the local database
func Login(t *testing.T, ctx *context.FoodlensCtx) {
	if err := session.Save(ctx.DB, session.Session{UserID: UserID, Token: SessionToken}); err != nil {
		t.Fatal(errors.Wrap(err, "saving session"))
	}

	ctx.UserID = UserID
	ctx.SessionToken = SessionToken
}

// RunFoodlensCmdOptions is an option for RunFoodlensCmd
type RunFoodlensCmdOptions struct {
	Env []string
}

// NewFoodlensCmd returns a new foodlens command and pointers to stderr and stdout
func NewFoodlensCmd(opts RunFoodlensCmdOptions, binaryName string, arg ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer, error) {
	var stderr, stdout bytes.Buffer

	binaryPath, err := filepath.Abs(binaryName)
	if err != nil {
		return &exec.Cmd{}, &stderr, &stdout, errors.Wrap(err, "getting the absolute path to the test binary")
	}

	cmd := exec.Command(binaryPath, arg...)
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout
	cmd.Env = append(opts.Env, "FOODLENS_DEBUG=1")

	return cmd, &stderr, &stdout, nil
}

// RunFoodlensCmd runs a foodlens command and fails the test if it fails.
// It returns the standard output.
func RunFoodlensCmd(t *testing.T, opts RunFoodlensCmdOptions, binaryName string, arg ...string) string {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, stderr, stdout, err := NewFoodlensCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	if err := cmd.Run(); err != nil {
		t.Logf("\n%s", stdout)
		t.Fatal(errors.Wrapf(err, "running command %s", stderr.String()))
	}

	// Print stdout if and only if test fails later
	t.Logf("\n%s", stdout)

	return stdout.String()
}

// RunFoodlensCmdErr runs a foodlens command that is expected to fail and
// returns its standard error
func RunFoodlensCmdErr(t *testing.T, opts RunFoodlensCmdOptions, binaryName string, arg ...string) string {
	cmd, stderr, stdout, err := NewFoodlensCmd(opts, binaryName, arg...)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command").Error())
	}

	if err := cmd.Run(); err == nil {
		t.Logf("\n%s", stdout)
		t.Fatalf("expected %s to fail", strings.Join(arg, " "))
	}

	return stderr.String()
}

// WaitFoodlensCmd runs a foodlens command and passes stdout and stdin to the callback
func WaitFoodlensCmd(t *testing.T, opts RunFoodlensCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) (string, error) {
	t.Logf("running: %s %s", binaryName, strings.Join(arg, " "))

	cmd, stderr, _, err := NewFoodlensCmd(opts, binaryName, arg...)
	if err != nil {
		return "", err
	}
	cmd.Stdout = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdout pipe")
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", errors.Wrap(err, "getting stdin")
	}
	defer stdin.Close()

	if err = cmd.Start(); err != nil {
		return "", errors.Wrap(err, "starting command")
	}

	var output bytes.Buffer
	tee := io.TeeReader(stdout, &output)

	if err := runFunc(tee, stdin); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrap(err, "running callback")
	}

	io.Copy(&output, stdout)

	if err := cmd.Wait(); err != nil {
		t.Logf("\n%s", output.String())
		return output.String(), errors.Wrapf(err, "command failed: %s", stderr.String())
	}

	t.Logf("\n%s", output.String())
	return output.String(), nil
}

// MustWaitFoodlensCmd runs WaitFoodlensCmd and fails the test on error
func MustWaitFoodlensCmd(t *testing.T, opts RunFoodlensCmdOptions, runFunc func(io.Reader, io.WriteCloser) error, binaryName string, arg ...string) string {
	output, err := WaitFoodlensCmd(t, opts, runFunc, binaryName, arg...)
	if err != nil {
		t.Fatal(err)
	}

	return output
}

// userRespondToPrompt waits for a prompt and writes the response to stdin
func userRespondToPrompt(stdout io.Reader, stdin io.WriteCloser, expectedPrompt, response, action string) error {
	if err := assert.RespondToPrompt(stdout, stdin, expectedPrompt, response, promptTimeout); err != nil {
		return errors.Wrapf(err, "indicating %s", action)
	}

	return nil
}

// ConfirmRemoveItem waits for the prompt for removing a pantry item and confirms
func ConfirmRemoveItem(stdout io.Reader, stdin io.WriteCloser) error {
	return userRespondToPrompt(stdout, stdin, PromptRemoveItem, "y\n", "confirmation")
}

// CancelRemoveItem waits for the prompt for removing a pantry item and cancels
func CancelRemoveItem(stdout io.Reader, stdin io.WriteCloser) error {
	return userRespondToPrompt(stdout, stdin, PromptRemoveItem, "n\n", "cancellation")
}

// EnterCredentials returns a callback answering the login prompts
func EnterCredentials(email, password string) func(io.Reader, io.WriteCloser) error {
	return func(stdout io.Reader, stdin io.WriteCloser) error {
		if err := userRespondToPrompt(stdout, stdin, PromptEmail, email+"\n", "email"); err != nil {
			return err
		}

		return userRespondToPrompt(stdout, stdin, PromptPassword, password+"\n", "password")
	}
}

// MustMarshalJSON marshalls the given interface into JSON.
// If there is any error, it fails the test.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("%s: marshalling data: %s", t.Name(), err.Error())
	}

	return b
}

// MustUnmarshalJSON unmarshalls the data into the destination.
// If there is any error, it fails the test.
func MustUnmarshalJSON(t *testing.T, data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("%s: unmarshalling data: %s", t.Name(), err.Error())
	}
}

// MustOpenDatabase opens the database at the path and closes it when the test ends
func MustOpenDatabase(t *testing.T, dbPath string) *database.DB {
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}

	t.Cleanup(func() { db.Close() })

	return db
}
