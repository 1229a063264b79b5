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

package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/foodlens/foodlens/pkg/cli/client"
	"github.com/gorilla/mux"
)

// Failure is an error response injected into a remote procedure
type Failure struct {
	StatusCode int
	Message    string
}

// RemoteServer is an in-memory fake of the remote procedures used in tests
type RemoteServer struct {
	*httptest.Server

	mu sync.Mutex

	// Token is the session token accepted by the data procedures
	Token string
	// UserID is the id of the account reported by auth_me
	UserID string
	// Email and Password are the credentials accepted by auth_login
	Email    string
	Password string

	// PantryRows and FavoriteRows are returned by the pull procedures
	PantryRows   []client.PantryRow
	FavoriteRows []client.FavoriteRow

	pantryPushes [][]client.PantryRow
	favsPushes   [][]client.FavoriteRow
	since        map[string][]*string
	calls        map[string]int
	failures     map[string]Failure
}

type rpcParams struct {
	Token    string          `json:"p_token"`
	Since    *string         `json:"p_since"`
	Items    json.RawMessage `json:"p_items"`
	Email    string          `json:"p_email"`
	Password string          `json:"p_password"`
}

// NewRemoteServer starts a fake remote. It is closed when the test ends.
func NewRemoteServer(t *testing.T) *RemoteServer {
	s := &RemoteServer{
		Token:    SessionToken,
		UserID:   UserID,
		Email:    "alice@example.com",
		Password: "pass1234",
		since:    map[string][]*string{},
		calls:    map[string]int{},
		failures: map[string]Failure{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/rest/v1/rpc/{procedure}", s.handleRPC).Methods("POST")

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

// Fail makes the procedure respond with the given failure
func (s *RemoteServer) Fail(procedure string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[procedure] = f
}

// Calls returns the number of times the procedure was invoked
func (s *RemoteServer) Calls(procedure string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[procedure]
}

// TotalCalls returns the number of procedure invocations
func (s *RemoteServer) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}

	return total
}

// PantryPushes returns the item batches received by pantry_push
func (s *RemoteServer) PantryPushes() [][]client.PantryRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pantryPushes
}

// FavsPushes returns the item batches received by favs_push
func (s *RemoteServer) FavsPushes() [][]client.FavoriteRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.favsPushes
}

// Since returns the cursors received by the pull procedure
func (s *RemoteServer) Since(procedure string) []*string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.since[procedure]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *RemoteServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	procedure := mux.Vars(r)["procedure"]

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[procedure]++

	if f, ok := s.failures[procedure]; ok {
		body := map[string]string{}
		if f.Message != "" {
			body["message"] = f.Message
		}
		writeJSON(w, f.StatusCode, body)
		return
	}

	var params rpcParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	if procedure == client.ProcLogin {
		if params.Email != s.Email || params.Password != s.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, s.Token)
		return
	}

	if params.Token != s.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}

	switch procedure {
	case client.ProcMe:
		writeJSON(w, http.StatusOK, []map[string]string{{"id": s.UserID, "email": s.Email}})
	case client.ProcPantryPush:
		var items []client.PantryRow
		if err := json.Unmarshal(params.Items, &items); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.pantryPushes = append(s.pantryPushes, items)
		writeJSON(w, http.StatusOK, map[string]int{"accepted": len(items)})
	case client.ProcFavsPush:
		var items []client.FavoriteRow
		if err := json.Unmarshal(params.Items, &items); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.favsPushes = append(s.favsPushes, items)
		writeJSON(w, http.StatusOK, map[string]int{"accepted": len(items)})
	case client.ProcPantryPull:
		s.since[procedure] = append(s.since[procedure], params.Since)
		rows := s.PantryRows
		if rows == nil {
			rows = []client.PantryRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	case client.ProcFavsPull:
		s.since[procedure] = append(s.since[procedure], params.Since)
		rows := s.FavoriteRows
		if rows == nil {
			rows = []client.FavoriteRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown procedure"})
	}
}

// NewClient returns a client pointed at the fake remote
func (s *RemoteServer) NewClient() *client.Client {
	return client.New(s.URL, "anon-key", "test", s.Server.Client())
}
