package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iluckin/image/internal/imaging"
	"github.com/iluckin/image/internal/recipe"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	errPathOutput = errors.New("output.path is not accepted over HTTP")
	errLocalInput = errors.New("local file inputs are not accepted over HTTP")
)

// checkInputs rejects recipes that would read files from the server's disk.
// Sources must be inline base64, a data URI or an http(s) URL; so must
// watermark marks.
func checkInputs(rc *recipe.Recipe) error {
	if !rc.Base64 && !isRemote(rc.Source) {
		return fmt.Errorf("%w: source %q", errLocalInput, rc.Source)
	}
	for i, s := range rc.Steps {
		if s.Op == recipe.OpWatermark && !isRemote(s.Mark) {
			return fmt.Errorf("%w: step %d mark %q", errLocalInput, i, s.Mark)
		}
	}
	return nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "data:")
}

// process runs the recipe in the request body. Without an output target in
// the recipe the encoded image is the response body; otherwise the JSON
// result is.
func (a *API) process(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBody))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	rc, err := recipe.Parse(body)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if rc.Output.Path != "" {
		a.fail(w, r, errPathOutput)
		return
	}
	if err := checkInputs(rc); err != nil {
		a.fail(w, r, err)
		return
	}

	im, err := a.runner.Apply(r.Context(), rc)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if rc.Output.Base64 || rc.Output.Upload {
		res, err := a.runner.Output(r.Context(), im, rc.Output)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	data, err := im.Bytes()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", im.Format().MimeType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Image-Width", strconv.Itoa(im.Width()))
	w.Header().Set("X-Image-Height", strconv.Itoa(im.Height()))
	w.Header().Set("X-Image-Frames", strconv.Itoa(im.FrameCount()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	id := RequestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		a.logger.Error("process failed", zap.String("request_id", id), zap.Error(err))
	} else {
		a.logger.Info("process rejected", zap.String("request_id", id), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorBody{
		Error:     err.Error(),
		Kind:      string(imaging.KindOf(err)),
		RequestID: id,
	})
}

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, recipe.ErrInvalid), errors.Is(err, errPathOutput), errors.Is(err, errLocalInput):
		return http.StatusBadRequest
	}

	switch imaging.KindOf(err) {
	case imaging.KindDecode, imaging.KindUnsupported:
		return http.StatusUnprocessableEntity
	case imaging.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
