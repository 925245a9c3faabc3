package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Bytes encodes the image in its current format.
func (im *Image) Bytes() ([]byte, error) {
	if im.err != nil {
		return nil, im.err
	}
	var buf bytes.Buffer
	if err := im.engine().Encode(&buf, im.picture()); err != nil {
		return nil, &Error{Kind: KindEncode, Op: "encode", Err: fmt.Errorf("failed to encode %s: %w", im.format, err)}
	}
	return buf.Bytes(), nil
}

// WriteTo writes the encoded image to w.
func (im *Image) WriteTo(w io.Writer) (int64, error) {
	data, err := im.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), &Error{Kind: KindEncode, Op: "write", Err: err}
	}
	return int64(n), nil
}

// Save encodes the image to path, creating missing parent directories.
// Animated images are written with all their frames.
func (im *Image) Save(path string) error {
	data, err := im.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &Error{Kind: KindEncode, Op: "save", Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Kind: KindEncode, Op: "save", Err: fmt.Errorf("failed to write image: %w", err)}
	}

	im.loader.logger.Sugar().Debugw("saved image", "path", path, "bytes", len(data))
	return nil
}

// Base64 encodes the image as standard base64. With header the string is a
// data URI ("data:image/png;base64,...").
func (im *Image) Base64(header bool) (string, error) {
	data, err := im.Bytes()
	if err != nil {
		return "", err
	}
	s := base64.StdEncoding.EncodeToString(data)
	if header {
		s = DataURIHeader(im.format) + s
	}
	return s, nil
}

// DataURIHeader returns the data URI prefix for format.
func DataURIHeader(format Format) string {
	return "data:" + format.MimeType() + ";base64,"
}
