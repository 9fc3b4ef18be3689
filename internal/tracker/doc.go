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

// Package tracker keeps the reading position for each document and decides
// what the next post says.
//
// A document starts AwaitingFirstMatch: its first line must be a header.
// Each header consumes two lines (the header and its first body line) and
// restarts the visible line count at 1; each body line consumes one line and
// increments the count. Body posts carry the most recent header as a prefix.
// ClassifyAndAdvance only computes the next state. Nothing is stored until
// Persist is called, so a failed post can be retried from the same place.
package tracker
