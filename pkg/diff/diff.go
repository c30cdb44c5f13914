// Package diff describes how a merge changed a document, as an RFC 7396
// merge patch or as a line diff of the rendered JSON.
package diff

import (
	"strings"

	"github.com/cockroachdb/errors"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/smykla-skalski/objmerge/pkg/value"
)

var (
	// ErrPatch indicates a merge patch that could not be created or applied
	ErrPatch = errors.New("merge patch failed")
)

// MergePatch returns the RFC 7396 merge patch turning base into target.
// Merge patches cannot set a field to null, so a null in target shows up as
// a removal.
func MergePatch(base, target value.Value) ([]byte, error) {
	baseJSON, err := value.EncodeJSON(base, value.EncodeOptions{Compact: true})
	if err != nil {
		return nil, errors.Wrap(err, "encoding base")
	}

	targetJSON, err := value.EncodeJSON(target, value.EncodeOptions{Compact: true})
	if err != nil {
		return nil, errors.Wrap(err, "encoding target")
	}

	patch, err := jsonpatch.CreateMergePatch(baseJSON, targetJSON)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrPatch), "creating merge patch")
	}

	return patch, nil
}

// ApplyPatch applies an RFC 7396 merge patch to base.
func ApplyPatch(base value.Value, patch []byte) (value.Value, error) {
	baseJSON, err := value.EncodeJSON(base, value.EncodeOptions{Compact: true})
	if err != nil {
		return value.Value{}, errors.Wrap(err, "encoding base")
	}

	out, err := jsonpatch.MergePatch(baseJSON, patch)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.Mark(err, ErrPatch), "applying merge patch")
	}

	return value.DecodeJSON(out)
}

// TextOptions configures Text.
type TextOptions struct {
	// FromLabel and ToLabel name the two sides in the header. No header is
	// written when both are empty.
	FromLabel string
	ToLabel   string
	// Color highlights removed and added lines.
	Color bool
	// Encode controls how both values are rendered before diffing.
	Encode value.EncodeOptions
}

// Text renders both values as JSON and returns a line diff prefixed with
// "-", "+" and " ". Identical renderings yield an empty string.
func Text(from, to value.Value, opts TextOptions) (string, error) {
	enc := opts.Encode
	enc.Color = false

	a, err := value.EncodeJSON(from, enc)
	if err != nil {
		return "", errors.Wrap(err, "encoding from")
	}

	b, err := value.EncodeJSON(to, enc)
	if err != nil {
		return "", errors.Wrap(err, "encoding to")
	}

	return Lines(string(a)+"\n", string(b)+"\n", opts), nil
}

// Lines diffs two texts line by line.
func Lines(from, to string, opts TextOptions) string {
	dmp := diffpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	changed := false

	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			changed = true

			break
		}
	}

	if !changed {
		return ""
	}

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	header := color.New(color.Bold)

	for _, c := range []*color.Color{removed, added, header} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var sb strings.Builder

	if opts.FromLabel != "" || opts.ToLabel != "" {
		sb.WriteString(header.Sprint("--- " + opts.FromLabel))
		sb.WriteByte('\n')
		sb.WriteString(header.Sprint("+++ " + opts.ToLabel))
		sb.WriteByte('\n')
	}

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffpatch.DiffDelete:
				sb.WriteString(removed.Sprint("-" + line))
			case diffpatch.DiffInsert:
				sb.WriteString(added.Sprint("+" + line))
			case diffpatch.DiffEqual:
				sb.WriteString(" " + line)
			}

			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// splitLines splits text on newlines, dropping the empty piece after a
// trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
