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

package database

// Lifecycle is the state of a synchronized row.
//
//	Active --soft delete--> PendingDelete --push acknowledged--> Purged
//
// A PendingDelete row goes back to Active only through an explicit re-add
// before it is pushed. A Purged row no longer exists in the table.
type Lifecycle int

const (
	// Active rows are visible to the user
	Active Lifecycle = iota
	// PendingDelete rows are soft-deleted and wait for their deletion to be pushed
	PendingDelete
	// Purged rows have been hard-deleted after the server acknowledged the deletion
	Purged
)

// LifecycleOf derives the lifecycle of a stored row from its deleted flag
func LifecycleOf(deleted bool) Lifecycle {
	if deleted {
		return PendingDelete
	}

	return Active
}

// Deleted returns the value of the deleted column for the state
func (l Lifecycle) Deleted() bool {
	return l != Active
}

func (l Lifecycle) String() string {
	switch l {
	case Active:
		return "active"
	case PendingDelete:
		return "pending_delete"
	case Purged:
		return "purged"
	}

	return "unknown"
}
