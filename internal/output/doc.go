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

// Package output renders emitted lines for the operator. Writer produces
// NDJSON (one object per line) for scripting; TextWriter prints the plain
// post text the way it would appear on the timeline.
//
// Example usage:
//
//	w, err := output.New("text", os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(output.Entry{Text: "Canto I\nl. 1: Midway upon the journey"}); err != nil {
//	    return err
//	}
package output
