package cmd

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// PrintError writes err to w. Coded errors show their code, message and
// suggestions on separate lines; anything else is printed as is.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		fmt.Fprintf(w, "%s %v\n", errStyle.Render("Error:"), err)
		return
	}

	fmt.Fprintf(w, "%s %s\n", errStyle.Render("Error ["+string(coded.Code)+"]:"), coded.Message)
	if coded.Cause != nil {
		fmt.Fprintf(w, "  %s %v\n", mutedStyle.Render("cause:"), coded.Cause)
	}
	if len(coded.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range coded.Suggestions {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
	if coded.DocsURL != "" {
		fmt.Fprintf(w, "\nDocumentation: %s\n", coded.DocsURL)
	}
}

func userIDRequired() error {
	return errors.NewInvalidIdentityError().
		WithSuggestion("Pass the backend user id (the token subject), e.g. pmos role 6f1c...")
}
