package imaging

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := &Error{Kind: KindFetch, Op: "open", Err: errors.New("timeout")}

	if !errors.Is(err, ErrFetch) {
		t.Error("fetch error should match ErrFetch")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("fetch error should not match ErrDecode")
	}

	wrapped := fmt.Errorf("pipeline: %w", err)
	if !errors.Is(wrapped, ErrFetch) {
		t.Error("wrapped error should match ErrFetch")
	}
	if got := KindOf(wrapped); got != KindFetch {
		t.Errorf("KindOf: got %q, want fetch", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf plain: got %q, want empty", got)
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{ErrDecode, "image decode error"},
		{&Error{Kind: KindEncode, Op: "save"}, "save: image encode error"},
		{&Error{Kind: KindEncode, Err: errors.New("disk full")}, "disk full"},
		{&Error{Kind: KindUnsupported, Op: "crop", Err: errors.New("empty")}, "crop: empty"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestNewError_KeepsKind(t *testing.T) {
	inner := &Error{Kind: KindDecode, Op: "open", Err: errors.New("bad")}
	err := newError(KindUnsupported, "watermark", inner)
	if !errors.Is(err, ErrDecode) || errors.Is(err, ErrUnsupported) {
		t.Errorf("newError changed the kind: %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		format        Format
		mime          string
		lossy         bool
		animated      bool
		thumbnailable bool
	}{
		{JPEG, "image/jpeg", true, false, true},
		{PNG, "image/png", false, false, true},
		{GIF, "image/gif", false, true, true},
		{BMP, "image/bmp", false, false, false},
		{TIFF, "image/tiff", false, false, false},
	}
	for _, tt := range tests {
		if got := tt.format.MimeType(); got != tt.mime {
			t.Errorf("%s MimeType: got %s, want %s", tt.format, got, tt.mime)
		}
		if tt.format.Lossy() != tt.lossy {
			t.Errorf("%s Lossy: got %v", tt.format, tt.format.Lossy())
		}
		if tt.format.Animated() != tt.animated {
			t.Errorf("%s Animated: got %v", tt.format, tt.format.Animated())
		}
		if tt.format.Thumbnailable() != tt.thumbnailable {
			t.Errorf("%s Thumbnailable: got %v", tt.format, tt.format.Thumbnailable())
		}
	}
}
