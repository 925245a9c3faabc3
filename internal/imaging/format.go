package imaging

// Format is the lowercase format tag reported by the decoder.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

func (f Format) String() string { return string(f) }

// MimeType returns the media type used in data URIs and HTTP responses.
func (f Format) MimeType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// Lossy reports whether the format has an adjustable compression quality.
func (f Format) Lossy() bool { return f == JPEG }

// Animated reports whether the format is handled as a frame sequence.
func (f Format) Animated() bool { return f == GIF }

// Thumbnailable reports whether Thumb resizes images of this format.
func (f Format) Thumbnailable() bool {
	return f == JPEG || f == PNG || f == GIF
}

// HasAlpha reports whether the encoder keeps transparency.
func (f Format) HasAlpha() bool { return f != JPEG }
