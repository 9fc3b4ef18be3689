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

// Package credentials obtains the OAuth 1.0a values a position record needs
// to post on behalf of its document.
//
// Provisioning happens once per document, when its record is first created.
// The interactive flow walks the operator through registering an app and
// authorizing it with a PIN; the environment provisioner reads values that
// were obtained earlier, which suits scheduled runs with no terminal.
package credentials
