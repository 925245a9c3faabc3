// Package imaging implements the image transformation pipeline.
//
// An Image is loaded through a Loader (from a path, a URL, raw bytes or a
// base64 string), transformed by a chain of operations, and written out as
// bytes, a file or a base64 string:
//
//	loader := imaging.NewLoader(raster.NewNative(), fetcher)
//	img, err := loader.Open(ctx, "https://example.com/photo.jpg")
//	if err != nil {
//	    return err
//	}
//	data, err := img.Thumb(1080, 80).
//	    Watermark(ctx, "logo.png", imaging.WatermarkOptions{X: 10, Y: 10, Circle: true}).
//	    Bytes()
//
// # Chaining and Errors
//
// Operations return the receiver so they can be chained. The first failure
// is kept on the Image and turns every later operation into a no-op; Err
// reports it and the output methods (Bytes, Save, Base64, WriteTo) return it.
// Errors carry a Kind and match the sentinels ErrDecode, ErrFetch, ErrEncode
// and ErrUnsupported with errors.Is.
//
// # Animated Images
//
// A GIF is an ordered sequence of frames, each drawn at an offset on a
// shared canvas. Geometric operations (Resize, Watermark, Crop) rebuild every
// frame: the frame is drawn onto a transparent canvas of the full page size,
// the transform is applied to that canvas, and the result becomes a frame
// with its page reset to the new canvas at (0,0). Frame order, delay and
// disposal are preserved. The rebuild is all-or-nothing: if any frame fails,
// the Image keeps its previous frames.
//
// # Formats
//
// Quality applies to lossy formats only (JPEG). Thumb applies to JPEG, PNG
// and GIF. A JPEG that receives a circular mask is re-tagged as PNG so its
// transparency survives encoding.
//
// # Thread Safety
//
// A Loader is safe for concurrent use. An Image is not: each Image belongs
// to the caller that loaded it.
package imaging
