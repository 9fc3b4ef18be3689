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

package twitter

import (
	"context"
	"time"

	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/output"
)

// DryRunPoster shows the text instead of posting it.
type DryRunPoster struct {
	out output.OutputWriter
	now func() time.Time
}

// NewDryRunPoster creates a poster that writes each post to out.
func NewDryRunPoster(out output.OutputWriter) *DryRunPoster {
	return &DryRunPoster{out: out, now: time.Now}
}

// Post writes text to the output. The returned Post has no ID.
func (p *DryRunPoster) Post(ctx context.Context, text string) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, &bberrors.PostError{Reason: "canceled", Err: err}
	}

	entry := output.Entry{
		Text:   text,
		Length: Length(text),
		Time:   p.now().UTC(),
	}
	if err := p.out.Write(entry); err != nil {
		return nil, &bberrors.PostError{Reason: "writing output", Err: err}
	}
	return &Post{Text: text}, nil
}
