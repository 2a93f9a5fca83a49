// Package fixed provides fixed-point arithmetic types used by the RCP.
package fixed

// Screen coordinates of the scissor box, 10.2 on the console.
//
//go:generate go run mkfixed.go UInt14_2 uint16
type UInt14_2 uint16

// Vertex screen coordinates.
//
//go:generate go run mkfixed.go Int14_2 int16
type Int14_2 int16

// Texture coordinates in texel space, s10.5 on the console.
//
//go:generate go run mkfixed.go Int11_5 int16
type Int11_5 int16
