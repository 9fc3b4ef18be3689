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

package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	var text, js bytes.Buffer

	New("info", "text", &text).Info("new file found", "fingerprint", "abc")
	New("info", "json", &js).Info("new file found", "fingerprint", "abc")

	if !strings.Contains(text.String(), "fingerprint=abc") {
		t.Errorf("text output = %q", text.String())
	}
	if !strings.Contains(js.String(), `"fingerprint":"abc"`) {
		t.Errorf("json output = %q", js.String())
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "text", &buf)

	logger.Info("suppressed")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "suppressed") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn message should be written")
	}
}

func TestOpenAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bookbyline.log")

	for _, msg := range []string{"first run", "second run"} {
		logger, closeFn, err := Open(path, "info", "text", nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		logger.Info(msg)
		if err := closeFn(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("log file should contain both runs, got %q", data)
	}
}

func TestOpenWithoutPathUsesFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := Open("", "info", "text", &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	logger.Info("to stderr")
	if !strings.Contains(buf.String(), "to stderr") {
		t.Errorf("fallback writer got %q", buf.String())
	}
}
