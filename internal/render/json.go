package render

import (
	"encoding/json"

	"github.com/schemadump/schemadump/internal/errs"
)

// JSON returns the canonical pretty-printed serialization of v (a
// *schema.Info or *schema.Table), used verbatim as the .json artifact.
// Parsing the output reproduces the input field-for-field.
func JSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "marshal schema", err)
	}
	return append(out, '\n'), nil
}
