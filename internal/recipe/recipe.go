// Package recipe describes a chain of image operations as JSON and applies
// it to an image. The CLI, the MCP server and the HTTP API all run recipes.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalid marks recipes that fail to parse or validate.
var ErrInvalid = errors.New("invalid recipe")

// Operation names accepted in Step.Op.
const (
	OpResize    = "resize"
	OpCrop      = "crop"
	OpCircle    = "circle"
	OpWatermark = "watermark"
	OpText      = "text"
	OpQuality   = "quality"
	OpThumb     = "thumb"
)

// Recipe is a source, the steps to run on it and where the result goes.
type Recipe struct {
	// Source is a path, an http(s) URL, a data URI or, with Base64 set, a
	// base64 payload.
	Source string `json:"source" validate:"required"`
	Base64 bool   `json:"base64,omitempty"`
	Steps  []Step `json:"steps" validate:"dive"`
	Output Output `json:"output"`
}

// Step is one operation. Only the fields the operation reads are used.
//
//	resize    width, height, mode ("lfit" or "fixed")
//	crop      x, y, width, height, quality
//	circle    width, height (the x and y radii)
//	watermark mark, x, y, width, height, circle
//	text      text, x, y, angle, font, font_size, font_weight, fill_color, under_color
//	quality   level, force
//	thumb     min_size, quality
type Step struct {
	Op string `json:"op" validate:"required,oneof=resize crop circle watermark text quality thumb"`

	X      int `json:"x,omitempty"`
	Y      int `json:"y,omitempty"`
	Width  int `json:"width,omitempty" validate:"gte=0"`
	Height int `json:"height,omitempty" validate:"gte=0"`

	Mode string `json:"mode,omitempty" default:"lfit" validate:"oneof=lfit fixed"`

	// Quality and MinSize are pointers so that an explicit 0 ("skip") is
	// not replaced by the default.
	Quality *int `json:"quality,omitempty" default:"80" validate:"omitempty,gte=0,lte=100"`
	Level   int  `json:"level,omitempty" validate:"gte=0,lte=100"`
	Force   bool `json:"force,omitempty"`
	MinSize *int `json:"min_size,omitempty" default:"1080" validate:"omitempty,gte=0"`

	Mark   string `json:"mark,omitempty"`
	Circle bool   `json:"circle,omitempty"`

	Text       string  `json:"text,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	Font       string  `json:"font,omitempty"`
	FontSize   float64 `json:"font_size,omitempty" default:"25" validate:"gte=0"`
	FontWeight int     `json:"font_weight,omitempty" default:"100" validate:"gte=0,lte=1000"`
	FillColor  string  `json:"fill_color,omitempty" default:"#ffffff"`
	UnderColor string  `json:"under_color,omitempty"`
}

// Output says what to do with the result. Several targets may be combined.
type Output struct {
	Path     string `json:"path,omitempty"`
	Base64   bool   `json:"base64,omitempty"`
	Header   bool   `json:"header,omitempty"`
	Upload   bool   `json:"upload,omitempty"`
	Folder   string `json:"folder,omitempty"`
	Filename string `json:"filename,omitempty"`
}

var validate = validatorV10.New()

// Parse decodes a JSON recipe, fills defaults and validates it.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := r.Normalize(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseFile reads and parses a recipe file.
func ParseFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data)
}

// Normalize fills defaults and validates. Recipes built in code must be
// normalized before Apply.
func (r *Recipe) Normalize() error {
	if err := defaults.Set(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validate.Struct(r); err != nil {
		var errs validatorV10.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("%w: %s %s", ErrInvalid, fieldName(fe), validationMessage(fe))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, s := range r.Steps {
		if err := s.check(); err != nil {
			return fmt.Errorf("%w: steps[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// check enforces the per-operation requirements struct tags cannot express.
func (s Step) check() error {
	switch s.Op {
	case OpWatermark:
		if s.Mark == "" {
			return errors.New("watermark needs a mark")
		}
	case OpText:
		if s.Text == "" {
			return errors.New("text needs text")
		}
	case OpQuality:
		if s.Level < 1 {
			return errors.New("quality needs a level between 1 and 100")
		}
	}
	return nil
}

// fieldName turns "Recipe.Steps[0].Mode" into "steps[0].mode".
func fieldName(fe validatorV10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}
