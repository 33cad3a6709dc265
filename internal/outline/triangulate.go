package outline

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/irfansharif/jigsaw/internal/geom"
)

// triangulate ear-clips a simple polygon, in either winding.
func triangulate(poly []geom.Point) ([][3]geom.Point, error) {
	if len(poly) < 3 {
		return nil, fmt.Errorf("degenerate polygon (%d vertices < 3)", len(poly))
	}

	flat := make([]float64, 0, 2*len(poly))
	for _, p := range poly {
		flat = append(flat, p.X, p.Y)
	}
	idx, err := earcut.Earcut(flat, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulating %d-vertex polygon: %w", len(poly), err)
	}
	if len(idx) == 0 || len(idx)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle index count %d", len(idx))
	}

	tris := make([][3]geom.Point, 0, len(idx)/3)
	for i := 0; i < len(idx); i += 3 {
		tris = append(tris, [3]geom.Point{poly[idx[i]], poly[idx[i+1]], poly[idx[i+2]]})
	}
	return tris, nil
}
