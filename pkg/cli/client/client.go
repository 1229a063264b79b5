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

// Package client calls the remote procedures of the Foodlens backend and
// provides the data structures exchanged with it
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foodlens/foodlens/pkg/cli/log"
	"github.com/foodlens/foodlens/pkg/cli/utils"
	"github.com/pkg/errors"
)

// Remote procedure names
const (
	ProcPantryPush = "pantry_push"
	ProcPantryPull = "pantry_pull"
	ProcFavsPush   = "favs_push"
	ProcFavsPull   = "favs_pull"
	ProcLogin      = "auth_login"
	ProcMe         = "auth_me"
)

// fallbackMessages are reported when a failed procedure carries no message
var fallbackMessages = map[string]string{
	ProcPantryPush: "push failed",
	ProcPantryPull: "pull failed",
	ProcFavsPush:   "favs push failed",
	ProcFavsPull:   "favs pull failed",
	ProcLogin:      "login failed",
	ProcMe:         "me failed",
}

// RPCError is an error response of a remote procedure
type RPCError struct {
	Procedure  string
	StatusCode int
	Message    string
}

func (e *RPCError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := fallbackMessages[e.Procedure]; ok {
		return msg
	}

	return fmt.Sprintf("%s failed", e.Procedure)
}

// IsUnauthorized returns true if the remote rejected the credentials
func (e *RPCError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Client calls remote procedures at Endpoint
type Client struct {
	Endpoint   string
	APIKey     string
	Version    string
	HTTPClient *http.Client
}

// New returns a client for the given endpoint
func New(endpoint, apiKey, version string, hc *http.Client) *Client {
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		APIKey:     apiKey,
		Version:    version,
		HTTPClient: hc,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return &http.Client{}
}

func (c *Client) getReq(ctx context.Context, procedure string, body []byte) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/rpc/%s", c.Endpoint, procedure)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Info", fmt.Sprintf("foodlens-cli/%s", c.Version))

	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	if id, err := utils.GenerateUUID(); err == nil {
		req.Header.Set("X-Request-Id", id)
	}

	return req, nil
}

type errorBody struct {
	Message string `json:"message"`
}

// checkRespErr converts an error response into an RPCError
func checkRespErr(procedure string, res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	ret := &RPCError{Procedure: procedure, StatusCode: res.StatusCode}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Debug("reading error body of %s: %s\n", procedure, err.Error())
		return ret
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		ret.Message = eb.Message
	}

	return ret
}

// call invokes the procedure with the given parameters and returns the raw
// response body
func (c *Client) call(ctx context.Context, procedure string, params interface{}) ([]byte, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling params")
	}

	req, err := c.getReq(ctx, procedure, b)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("RPC %s\n", procedure)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", procedure)
	}
	defer res.Body.Close()

	log.Debug("RPC %s %d\n", procedure, res.StatusCode)

	if err := checkRespErr(procedure, res); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading the response body")
	}

	return body, nil
}

// decodeArray decodes a JSON array into v. Anything other than an array
// leaves v untouched.
func decodeArray(body []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return errors.Wrap(err, "unmarshalling the payload")
	}

	return nil
}

type pushParams struct {
	Token string      `json:"p_token"`
	Items interface{} `json:"p_items"`
}

type pullParams struct {
	Token string  `json:"p_token"`
	Since *string `json:"p_since"`
}

// PushResp is the acknowledgement of a push, passed through as returned
type PushResp json.RawMessage

// PantryPush sends pantry rows to the remote
func (c *Client) PantryPush(ctx context.Context, token string, items []PantryRow) (PushResp, error) {
	body, err := c.call(ctx, ProcPantryPush, pushParams{Token: token, Items: items})
	if err != nil {
		return nil, err
	}

	return PushResp(body), nil
}

// PantryPull gets pantry rows changed since the cursor. A nil cursor requests
// every row.
func (c *Client) PantryPull(ctx context.Context, token string, since *string) ([]PantryRow, error) {
	body, err := c.call(ctx, ProcPantryPull, pullParams{Token: token, Since: since})
	if err != nil {
		return nil, err
	}

	ret := []PantryRow{}
	if err := decodeArray(body, &ret); err != nil {
		return nil, err
	}

	return ret, nil
}

// FavsPush sends favorite rows to the remote
func (c *Client) FavsPush(ctx context.Context, token string, items []FavoriteRow) (PushResp, error) {
	body, err := c.call(ctx, ProcFavsPush, pushParams{Token: token, Items: items})
	if err != nil {
		return nil, err
	}

	return PushResp(body), nil
}

// FavsPull gets favorite rows changed since the cursor
func (c *Client) FavsPull(ctx context.Context, token string, since *string) ([]FavoriteRow, error) {
	body, err := c.call(ctx, ProcFavsPull, pullParams{Token: token, Since: since})
	if err != nil {
		return nil, err
	}

	ret := []FavoriteRow{}
	if err := decodeArray(body, &ret); err != nil {
		return nil, err
	}

	return ret, nil
}

// ErrInvalidLogin is an error for invalid credentials for login
var ErrInvalidLogin = errors.New("wrong credentials")

type loginParams struct {
	Email    string `json:"p_email"`
	Password string `json:"p_password"`
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := c.call(ctx, ProcLogin, loginParams{Email: email, Password: password})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.IsUnauthorized() {
			return "", ErrInvalidLogin
		}

		return "", err
	}

	var token string
	if err := json.Unmarshal(body, &token); err != nil {
		return "", errors.Wrap(err, "unmarshalling the token")
	}
	if token == "" {
		return "", ErrInvalidLogin
	}

	return token, nil
}

// User is the account of a session
type User struct {
	ID       string
	Email    string
	Username string
	Phone    string
}

type meRow struct {
	ID       Text `json:"id"`
	UserID   Text `json:"user_id"`
	UID      Text `json:"uid"`
	UUID     Text `json:"uuid"`
	Email    Text `json:"email"`
	Username Text `json:"username"`
	Phone    Text `json:"phone"`
}

type meParams struct {
	Token string `json:"p_token"`
}

// Me returns the user of the session token. The remote may answer with a
// single row or an array; a nil user means the token matches no account.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	body, err := c.call(ctx, ProcMe, meParams{Token: token})
	if err != nil {
		return nil, err
	}

	var row *meRow
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []meRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, errors.Wrap(err, "unmarshalling the payload")
		}
		if len(rows) > 0 {
			row = &rows[0]
		}
	} else if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		var r meRow
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return nil, errors.Wrap(err, "unmarshalling the payload")
		}
		row = &r
	}

	if row == nil {
		return nil, nil
	}

	id := string(row.ID)
	for _, alt := range []Text{row.UserID, row.UID, row.UUID} {
		if id != "" {
			break
		}
		id = string(alt)
	}

	return &User{
		ID:       id,
		Email:    string(row.Email),
		Username: string(row.Username),
		Phone:    string(row.Phone),
	}, nil
}
