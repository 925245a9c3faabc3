// Package raster is the pixel engine behind the image pipeline.
//
// It decodes and encodes image bytes, allocates canvases, composites layers
// with source-over blending, scales, crops, masks and draws text. The
// pipeline in package imaging only talks to it through the Engine interface,
// so every primitive it needs is listed there and nothing else is reachable.
//
// # Frames
//
// A decoded Picture holds one Frame per source sub-image. Frame pixels are
// always *image.NRGBA with their origin at (0,0); the position of a frame on
// the animation canvas lives in its Page. GIF sub-frames are frequently
// smaller than the canvas and offset into it, so Page.Width/Height is not
// the same thing as the raster size.
//
// # Units
//
// Frame.Delay is in hundredths of a second and Frame.Dispose is the GIF
// disposal byte. Both are carried through untouched.
//
// # Thread Safety
//
// Native is safe for concurrent use. Its font cache is guarded by a
// sync.RWMutex and every operation allocates its own output raster.
package raster
