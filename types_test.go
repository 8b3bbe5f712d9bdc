package sheet2png

import (
	"errors"
	"testing"
	"time"
)

func TestParseViewport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Viewport
		wantErr bool
	}{
		{"1920x1080", Viewport{1920, 1080}, false},
		{" 800X600 ", Viewport{800, 600}, false},
		{"1920", Viewport{}, true},
		{"0x600", Viewport{}, true},
		{"axb", Viewport{}, true},
		{"19x20x3", Viewport{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseViewport(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidViewport) {
					t.Errorf("ParseViewport(%q) error = %v, want ErrInvalidViewport", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseViewport(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseViewport(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewport_String(t *testing.T) {
	t.Parallel()

	if got := DefaultViewport.String(); got != "1920x1080" {
		t.Errorf("String() = %q, want 1920x1080", got)
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    CollisionPolicy
		wantErr bool
	}{
		{"overwrite", CollisionOverwrite, false},
		{"Suffix", CollisionSuffix, false},
		{"", "", true},
		{"skip", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCollisionPolicy(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCollisionPolicy) {
				t.Errorf("ParseCollisionPolicy(%q) error = %v, want ErrInvalidCollisionPolicy", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCollisionPolicy(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSessionOptions_Defaults(t *testing.T) {
	t.Parallel()

	o := SessionOptions{ScaleFactor: 1}.withDefaults()

	if o.Viewport != DefaultViewport {
		t.Errorf("Viewport = %v, want %v", o.Viewport, DefaultViewport)
	}
	if o.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", o.Timeout, DefaultTimeout)
	}
	if o.IdleWindow != DefaultIdleWindow {
		t.Errorf("IdleWindow = %v, want %v", o.IdleWindow, DefaultIdleWindow)
	}
	if err := o.validate(); err != nil {
		t.Errorf("validate() unexpected error: %v", err)
	}
}

func TestSessionOptions_Validate(t *testing.T) {
	t.Parallel()

	valid := SessionOptions{ScaleFactor: 2, Viewport: DefaultViewport, Timeout: time.Second, IdleWindow: time.Millisecond}

	tests := []struct {
		name    string
		mutate  func(o *SessionOptions)
		wantErr error
	}{
		{"scale at max", func(o *SessionOptions) { o.ScaleFactor = MaxScaleFactor }, nil},
		{"fractional scale", func(o *SessionOptions) { o.ScaleFactor = 1.5 }, nil},
		{"zero scale", func(o *SessionOptions) { o.ScaleFactor = 0 }, ErrInvalidScaleFactor},
		{"negative scale", func(o *SessionOptions) { o.ScaleFactor = -2 }, ErrInvalidScaleFactor},
		{"scale above max", func(o *SessionOptions) { o.ScaleFactor = 8.5 }, ErrInvalidScaleFactor},
		{"negative height", func(o *SessionOptions) { o.Viewport.Height = -1 }, ErrInvalidViewport},
		{"negative timeout", func(o *SessionOptions) { o.Timeout = -time.Second }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := valid
			tt.mutate(&o)
			err := o.validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunSummary_Failed(t *testing.T) {
	t.Parallel()

	boom := &SheetError{Sheet: "B", Stage: StageCapture, Err: ErrNoTableFound}
	s := &RunSummary{
		Total:     3,
		Succeeded: 2,
		Results: []ExportResult{
			{Sheet: "A", OutputPath: "A.png"},
			{Sheet: "B", Err: boom},
			{Sheet: "C", OutputPath: "C.png"},
		},
	}

	failed := s.Failed()
	if len(failed) != 1 || failed[0].Sheet != "B" {
		t.Fatalf("Failed() = %+v, want only B", failed)
	}
	if (&RunSummary{}).Failed() != nil {
		t.Error("Failed() on an empty summary should be nil")
	}
}

func TestSheetError(t *testing.T) {
	t.Parallel()

	err := error(&SheetError{Sheet: "Q1", Stage: StageWrite, Err: ErrWriteImage})

	if got, want := err.Error(), `sheet "Q1": write: cannot write image`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrWriteImage) {
		t.Error("errors.Is should see the wrapped cause")
	}
}
