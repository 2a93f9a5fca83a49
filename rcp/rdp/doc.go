// Package rdp models the color combiner of the RDP.
//
// The combiner evaluates (A-B)*C+D per pixel, once for RGB and once for alpha,
// where each of the four inputs is picked by a selector code. A CombinerState
// holds the packed selector codes for both cycles together with the primitive
// and environment colors. NewShader turns it into a ShadeFunc, which can be
// called for every fragment produced by a rasterizer.
//
// DisplayList writes the corresponding RDP commands, so that a state used on
// the host can be replayed on the console and vice versa.
package rdp
