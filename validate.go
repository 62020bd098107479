package folio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDraft trims the free-text fields of d and checks every constraint.
// A failure is a *ValidationError naming the first failing field in the
// order title, description, caption, story, category, tags.
func ValidateDraft(d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Caption = strings.TrimSpace(d.Caption)
	d.Story = strings.TrimSpace(d.Story)

	if err := draftValidator.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return Draft{}, &ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
		}
		return Draft{}, fmt.Errorf("validate draft: %w", err)
	}

	return d, nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " check"
	}
}

const sniffLen = 3072

// rasterTypes are the accepted upload formats. Scriptable formats such as SVG
// are refused because media is served from the API origin.
var rasterTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/avif"}

// sniffImage reads the head of r to detect its media type and returns a
// reader that replays the head followed by the rest of r.
func sniffImage(r io.Reader) (io.Reader, string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("read payload: %w", err)
	}
	head = head[:n]

	if n == 0 {
		return nil, "", &ValidationError{Field: "image", Reason: "is empty"}
	}

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), rasterTypes...) {
		return nil, "", &ValidationError{Field: "image", Reason: "must be a JPEG, PNG, WebP, GIF or AVIF image, got " + mt.String()}
	}

	return io.MultiReader(bytes.NewReader(head), r), mt.String(), nil
}

// sizeGuard fails a read that would take the stream past limit bytes.
type sizeGuard struct {
	r         io.Reader
	remaining int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	if g.remaining < 0 {
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > g.remaining+1 {
		p = p[:g.remaining+1]
	}
	n, err := g.r.Read(p)
	g.remaining -= int64(n)
	if g.remaining < 0 {
		return n, ErrSizeLimit
	}
	return n, err
}
