package bvh

import "github.com/achilleasa/polaris-accel/asset/scene"

// Append to out the referenced triangle for each primitive in the final
// primitive order. Leaf LeftFirst/Count values index directly into the
// result.
func linearize(references []scene.Triangle, prims []Primitive, out []scene.Triangle) []scene.Triangle {
	for i := range prims {
		out = append(out, references[prims[i].Index])
	}
	return out
}
