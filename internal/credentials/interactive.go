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

package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dghubble/oauth1"
	bberrors "github.com/sirseerhq/bookbyline/internal/errors"
	"github.com/sirseerhq/bookbyline/internal/store"
	"golang.org/x/term"
)

// AppRegistrationURL is where operators create the app that supplies the
// consumer key and secret.
const AppRegistrationURL = "https://developer.twitter.com/en/portal/projects-and-apps"

// Interactive runs the PIN-based OAuth 1.0a flow on a terminal.
type Interactive struct {
	In  io.Reader
	Out io.Writer

	// Endpoint holds the request-token, authorize and access-token URLs.
	Endpoint oauth1.Endpoint

	reader *bufio.Reader
}

// NewInteractive creates an interactive provisioner reading from in and
// writing prompts to out.
func NewInteractive(in io.Reader, out io.Writer, endpoint oauth1.Endpoint) *Interactive {
	return &Interactive{In: in, Out: out, Endpoint: endpoint}
}

// Provision asks for the consumer key and secret, sends the operator to the
// authorization page, and exchanges the PIN they bring back for an access
// token. Entering "q" at the first prompt abandons the flow.
func (i *Interactive) Provision(ctx context.Context) (store.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return store.Credentials{}, fmt.Errorf("%w: %w", bberrors.ErrAuthSetup, err)
	}

	fmt.Fprintf(i.Out, `This document has no posting credentials yet.
If you already have a consumer key and secret, enter them below. Otherwise
create an app with read and write access at:
  %s

`, AppRegistrationURL)

	answer, err := i.prompt("Press Return to continue, or q then Return to quit... ")
	if err != nil {
		return store.Credentials{}, fail("reading confirmation", err)
	}
	if strings.EqualFold(answer, "q") {
		fmt.Fprintln(i.Out, "Abandoning OAuth process.")
		return store.Credentials{}, fmt.Errorf("OAuth process was abandoned: %w", bberrors.ErrAuthSetup)
	}

	var creds store.Credentials
	if creds.ConsumerKey, err = i.prompt("Consumer Key: "); err != nil {
		return store.Credentials{}, fail("reading consumer key", err)
	}
	if creds.ConsumerSecret, err = i.promptSecret("Consumer Secret: "); err != nil {
		return store.Credentials{}, fail("reading consumer secret", err)
	}
	if creds.ConsumerKey == "" || creds.ConsumerSecret == "" {
		return store.Credentials{}, fmt.Errorf("consumer key and secret are required: %w", bberrors.ErrAuthSetup)
	}

	config := &oauth1.Config{
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		CallbackURL:    "oob",
		Endpoint:       i.Endpoint,
	}

	requestToken, requestSecret, err := config.RequestToken()
	if err != nil {
		return store.Credentials{}, fail("obtaining request token", err)
	}
	authURL, err := config.AuthorizationURL(requestToken)
	if err != nil {
		return store.Credentials{}, fail("building authorization URL", err)
	}

	fmt.Fprintf(i.Out, "\nOpen this page, authorize the app, and note the PIN:\n  %s\n\n", authURL.String())

	pin, err := i.prompt("Verification PIN: ")
	if err != nil {
		return store.Credentials{}, fail("reading PIN", err)
	}
	if pin == "" {
		return store.Credentials{}, fmt.Errorf("no PIN entered: %w", bberrors.ErrAuthSetup)
	}

	creds.AccessKey, creds.AccessSecret, err = config.AccessToken(requestToken, requestSecret, pin)
	if err != nil {
		return store.Credentials{}, fail("exchanging PIN for access token", err)
	}

	fmt.Fprintf(i.Out, "Access token:\n  Key: %s\n  Secret: %s\n", creds.AccessKey, creds.AccessSecret)
	return creds, nil
}

func (i *Interactive) prompt(label string) (string, error) {
	fmt.Fprint(i.Out, label)
	if i.reader == nil {
		i.reader = bufio.NewReader(i.In)
	}
	line, err := i.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when the input is a terminal.
func (i *Interactive) promptSecret(label string) (string, error) {
	f, ok := i.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return i.prompt(label)
	}

	fmt.Fprint(i.Out, label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(i.Out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

func fail(step string, err error) error {
	return fmt.Errorf("couldn't complete OAuth setup while %s: %w: %w", step, bberrors.ErrAuthSetup, err)
}
