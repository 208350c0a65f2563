package cli

import (
	"context"
	"fmt"
	"strings"
)

// resolveTourID accepts a full id, an exact title (case-insensitive) or an
// unambiguous id prefix.
func resolveTourID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("tour ID is required")
	}

	tours, err := app.Tours.List(ctx)
	if err != nil {
		return "", err
	}

	for _, t := range tours {
		if t.ID == input {
			return t.ID, nil
		}
	}

	var matches []string
	for _, t := range tours {
		if strings.EqualFold(t.Title, input) {
			matches = append(matches, t.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("tour title %q is ambiguous (%d matches); use the id", input, len(matches))
	}

	for _, t := range tours {
		if strings.HasPrefix(t.ID, input) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("tour not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("tour ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
