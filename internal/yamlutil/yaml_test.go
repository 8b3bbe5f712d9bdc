package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-sheet2png/internal/yamlutil"
)

type renderSection struct {
	ScaleFactor float64 `yaml:"scaleFactor"`
	Timeout     string  `yaml:"timeout"`
}

type testConfig struct {
	Render renderSection `yaml:"render"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict decoding of config-shaped YAML
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        []byte
		dest        any
		wantErr     error
		wantErrText string
		check       func(t *testing.T, v any)
	}{
		{
			name: "known keys decode",
			data: []byte("render:\n  scaleFactor: 3\n  timeout: 45s\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Render.ScaleFactor != 3 {
					t.Errorf("ScaleFactor = %v, want 3", cfg.Render.ScaleFactor)
				}
				if cfg.Render.Timeout != "45s" {
					t.Errorf("Timeout = %q, want %q", cfg.Render.Timeout, "45s")
				}
			},
		},
		{
			name:        "unknown key rejected",
			data:        []byte("render:\n  scale: 3\n"),
			dest:        &testConfig{},
			wantErrText: "yamlutil:",
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("render: {}"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:        "invalid syntax",
			data:        []byte("render: [unclosed"),
			dest:        &testConfig{},
			wantErrText: "yamlutil:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantErrText != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrText) {
					t.Fatalf("UnmarshalStrict() error = %v, want containing %q", err, tt.wantErrText)
				}
				return
			}

			if err != nil {
				t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalStrict_InputTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("render: {}\n" + strings.Repeat("#", yamlutil.MaxInputSize))

	err := yamlutil.UnmarshalStrict(data, &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
	}
}
