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

package emitter

import (
	"github.com/sirseerhq/bookbyline/internal/output"
	"github.com/sirseerhq/bookbyline/internal/store"
	"github.com/sirseerhq/bookbyline/internal/twitter"
)

// PosterFactory builds the poster for a document's credentials.
type PosterFactory func(creds store.Credentials) (twitter.Poster, error)

// DryRun returns a factory that shows posts on out and ignores credentials.
func DryRun(out output.OutputWriter) PosterFactory {
	p := twitter.NewDryRunPoster(out)
	return func(store.Credentials) (twitter.Poster, error) {
		return p, nil
	}
}

// Live returns a factory that posts with each document's own credentials.
func Live(opts ...twitter.Option) PosterFactory {
	return func(creds store.Credentials) (twitter.Poster, error) {
		return twitter.NewClient(creds, opts...), nil
	}
}

// Static returns a factory that always yields p.
func Static(p twitter.Poster) PosterFactory {
	return func(store.Credentials) (twitter.Poster, error) {
		return p, nil
	}
}
