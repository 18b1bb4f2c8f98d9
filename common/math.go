// Package common contains shared types and math helpers used throughout the
// engine. They are plain structs and free functions, not interface-wrapped
// types.
package common

import "unsafe"

// Vec2 is a 2D point or direction in graph space or screen space.
type Vec2 struct {
	X, Y float32
}

// Add returns the component-wise sum of v and o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns the component-wise difference of v and o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled uniformly by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mat3 is a row-major 3x3 affine matrix: the bottom row is always [0 0 1]
// and is not stored; only the 6 affine coefficients are kept.
//
//	[ A B Tx ]
//	[ C D Ty ]
//	[ 0 0 1  ]
type Mat3 struct {
	A, B, C, D   float32
	Tx, Ty       float32
}

// Identity3 returns the affine identity transform.
func Identity3() Mat3 {
	return Mat3{A: 1, D: 1}
}

// Mul3 composes two affine transforms: the result applies b first, then a.
func Mul3(a, b Mat3) Mat3 {
	return Mat3{
		A:  a.A*b.A + a.B*b.C,
		B:  a.A*b.B + a.B*b.D,
		C:  a.C*b.A + a.D*b.C,
		D:  a.C*b.B + a.D*b.D,
		Tx: a.A*b.Tx + a.B*b.Ty + a.Tx,
		Ty: a.C*b.Tx + a.D*b.Ty + a.Ty,
	}
}

// Apply transforms a point by the affine matrix.
func (m Mat3) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.B*p.Y + m.Tx,
		Y: m.C*p.X + m.D*p.Y + m.Ty,
	}
}

// Invert returns the inverse of an affine transform. Panics if the matrix
// is singular (determinant of the linear part is zero), mirroring the
// engine's other invariant-violation panics — an invertible viewport
// transform is a maintained invariant, not a user-facing error condition.
func (m Mat3) Invert() Mat3 {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		panic("common: Mat3 is singular, cannot invert")
	}
	invDet := 1 / det
	a := m.D * invDet
	b := -m.B * invDet
	c := -m.C * invDet
	d := m.A * invDet
	return Mat3{
		A: a, B: b, C: c, D: d,
		Tx: -(a*m.Tx + b*m.Ty),
		Ty: -(c*m.Tx + d*m.Ty),
	}
}

// Translation returns a pure translation transform.
func Translation(tx, ty float32) Mat3 {
	return Mat3{A: 1, D: 1, Tx: tx, Ty: ty}
}

// Scaling returns a pure uniform-scale transform about the origin.
func Scaling(s float32) Mat3 {
	return Mat3{A: s, D: s}
}

// SliceToBytes reinterprets a typed slice's backing array as a raw byte
// slice, for uploading structured data to a GPU buffer without a manual
// per-field marshal. The caller must not mutate T's layout assumptions
// (no pointers, no Go-managed memory) for the lifetime of the returned
// slice.
func SliceToBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	sz := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*sz)
}

// StructToBytes reinterprets a single struct value as a raw byte slice,
// suitable for a GPU uniform buffer upload.
func StructToBytes[T any](v *T) []byte {
	sz := int(unsafe.Sizeof(*v))
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), sz)
}
