//go:build unix

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

import "golang.org/x/sys/unix"

func (l *storeLock) lock(mode lockMode) error {
	op := unix.LOCK_SH
	if mode == lockExclusive {
		op = unix.LOCK_EX
	}
	return unix.Flock(int(l.f.Fd()), op)
}

func (l *storeLock) unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
