package marc

import (
	"fmt"
	"io"
)

// DendrogramRenderer receives the single-linkage dendrogram of a
// dissimilarity matrix for diagnostic output. rows are in scipy linkage
// format, [left, right, distance, mergedSize], with merged cluster IDs
// starting at the ensemble size. Rendering is side-effect only and never
// changes the pipeline outcome.
type DendrogramRenderer interface {
	RenderDendrogram(rows [][4]float64, label string) error
}

// TextDendrogram writes dendrogram merge rows as plain text, one merge per
// line. It is the built-in renderer for terminal diagnostics; plotting
// frontends implement DendrogramRenderer themselves.
type TextDendrogram struct {
	W io.Writer
}

func (t TextDendrogram) RenderDendrogram(rows [][4]float64, label string) error {
	if _, err := fmt.Fprintf(t.W, "%s single-linkage dendrogram (%d merges)\n", label, len(rows)); err != nil {
		return err
	}
	for i, r := range rows {
		_, err := fmt.Fprintf(t.W, "  %3d: %4d + %4d  at %.6f  (size %d)\n",
			i, int(r[0]), int(r[1]), r[2], int(r[3]))
		if err != nil {
			return err
		}
	}
	return nil
}
