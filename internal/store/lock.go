// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// lockMode selects shared (read) or exclusive (write) locking.
type lockMode int

const (
	lockShared lockMode = iota
	lockExclusive
)

// storeLock coordinates processes sharing one store file. The store file is
// replaced by rename on every write, so the OS lock lives on a sibling
// "<path>.lock" file that is never replaced.
type storeLock struct {
	mu sync.Mutex
	f  *os.File
}

// openLock opens or creates the lock file for the store at storePath.
func openLock(storePath string) (*storeLock, error) {
	f, err := os.OpenFile(storePath+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open store lock: %w", err)
	}
	return &storeLock{f: f}, nil
}

// hold runs fn while holding the lock in mode. It fails with ErrClosed once
// close has been called. Close waits for a running fn to finish.
func (l *storeLock) hold(mode lockMode, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return ErrClosed
	}
	if err := l.lock(mode); err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	fnErr := fn()
	if err := l.unlock(); err != nil {
		return errors.Join(fnErr, fmt.Errorf("failed to unlock store: %w", err))
	}
	return fnErr
}

// close releases the lock file. Later calls are no-ops.
func (l *storeLock) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
