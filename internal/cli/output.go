package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
)

// render writes v as indented JSON or hands the writer to text.
func render(cmd *cobra.Command, opts *RootOptions, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(out)
	return nil
}

// Describe formats service errors with their code so scripts can grep them.
func Describe(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		msg := fmt.Sprintf("%s: %s", typed.Code(), typed.Message())
		if details := typed.Details(); details != nil {
			if b, jsonErr := json.Marshal(details); jsonErr == nil {
				msg += " " + string(b)
			}
		}
		return msg
	}
	return err.Error()
}
