package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"surfapp/internal/apiclient"
	"surfapp/internal/models"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "api error",
			err:  apiclient.Newf(apiclient.CodeNotFound, "photographer not found"),
			want: "Error [NOT_FOUND]: photographer not found\n",
		},
		{
			name: "validation fields",
			err: &apiclient.Error{
				Code:    apiclient.CodeValidation,
				Message: "invalid request",
				Details: map[string]any{"fields": map[string]string{"email": "email"}},
			},
			want: "Error [VALIDATION_ERROR]: invalid request\n  fields: map[email:email]\n",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "Error: boom\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("printError() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestBytesString(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{66_100_000, "63.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := bytesString(tt.in); got != tt.want {
			t.Errorf("bytesString(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConditionsString(t *testing.T) {
	height, speed := 1.5, 12.0
	dir, tide := "offshore", "mid"
	c := &models.WaveConditions{WaveHeight: &height, WindSpeed: &speed, WindDirection: &dir, Tide: &tide}

	want := "waves 1.5m, wind 12 km/h offshore, tide mid"
	if got := conditionsString(c); got != want {
		t.Errorf("conditionsString() = %q, want %q", got, want)
	}
}

func TestPhotographerFiltersOnlyChangedFlags(t *testing.T) {
	if err := photographersCmd.ParseFlags([]string{"--min-rating", "0", "--available=false"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	t.Cleanup(func() {
		for _, name := range []string{"min-rating", "available"} {
			photographersCmd.Flags().Lookup(name).Changed = false
		}
		filterMinRating, filterAvailable = 0, false
	})

	f := photographerFilters(photographersCmd)
	if f.Spot != nil || f.MaxPrice != nil {
		t.Errorf("unset filters were sent: %+v", f)
	}
	if f.MinRating == nil || *f.MinRating != 0 {
		t.Errorf("MinRating = %v, want explicit 0", f.MinRating)
	}
	if f.AvailableOnly == nil || *f.AvailableOnly {
		t.Errorf("AvailableOnly = %v, want explicit false", f.AvailableOnly)
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	conf := "transport: direct\n" +
		"database:\n  driver: memory\n" +
		"session:\n  driver: memory\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(path, []byte(conf), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rootCmd.SetArgs(append([]string{"--config", path, "--json"}, args...))
	t.Cleanup(func() { jsonOutput = false })
	return rootCmd.ExecuteContext(context.Background())
}

func TestCLIRequiresLogin(t *testing.T) {
	err := runCLI(t, "bookings")
	if code := apiclient.CodeOf(err); code != apiclient.CodeNotAuthenticated {
		t.Fatalf("code = %q, want %q (err %v)", code, apiclient.CodeNotAuthenticated, err)
	}
}

func TestCLIPhotographerNotFound(t *testing.T) {
	err := runCLI(t, "photographer", "ph-nope")
	if code := apiclient.CodeOf(err); code != apiclient.CodeNotFound {
		t.Fatalf("code = %q, want %q (err %v)", code, apiclient.CodeNotFound, err)
	}
}
