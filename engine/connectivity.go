package engine

// cardinal4 lists the four cardinal neighbor offsets used by the
// subsurface horizontal-flow stencil, in a fixed order shared with the
// connectivity cache so mask index i lines up with this slice's index i.
var cardinal4 = []struct{ dx, dy int }{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// connectivityCache precomputes, for each layer and cardinal direction, a
// boolean mask of valid edges: true when both the source cell and its
// neighbor have non-zero depth in that layer and the neighbor is inside
// the grid. Invalidated only on terrain mutation, removing per-tick
// geometry checks from the subsurface inner loop (spec §4.5 "Optimization
// note").
type connectivityCache struct {
	w, h int
	// mask[layer][direction][cellIndex]
	mask [NumLayers][4][]bool
}

func newConnectivityCache(s *State) *connectivityCache {
	c := &connectivityCache{w: s.W, h: s.H}
	for l := 0; l < NumLayers; l++ {
		for d := 0; d < 4; d++ {
			c.mask[l][d] = make([]bool, s.W*s.H)
		}
	}
	c.rebuild(s)
	return c
}

func (c *connectivityCache) rebuild(s *State) {
	for l := 0; l < s.L; l++ {
		for d, n := range cardinal4 {
			m := c.mask[l][d]
			for y := 0; y < s.H; y++ {
				for x := 0; x < s.W; x++ {
					i := s.Idx2(x, y)
					nx, ny := x+n.dx, y+n.dy
					if !s.InBounds(nx, ny) {
						m[i] = false
						continue
					}
					srcDepth := s.TerrainLayers[s.Idx3(Layer(l), x, y)]
					dstDepth := s.TerrainLayers[s.Idx3(Layer(l), nx, ny)]
					m[i] = srcDepth > 0 && dstDepth > 0
				}
			}
		}
	}
}

// connected reports whether (x,y) has a valid edge to its neighbor in
// cardinal direction d at layer l.
func (c *connectivityCache) connected(l Layer, x, y, d int) bool {
	return c.mask[l][d][y*c.w+x]
}
