// Package common contains plain data types shared across the engine and
// the rest of the domain packages. These are not interface-wrapped; they
// just express commonly used shapes.
package common

import "github.com/cogentcore/webgpu/wgpu"

// TextureStagingData holds RGBA pixel data for a texture binding pending
// GPU upload. Used by the bind-group initializer to stage texture data
// (e.g. the MSDF label atlas) before creating the GPU texture and bind
// group.
type TextureStagingData struct {
	// Pixels is the raw pixel data, RGBA with 4 bytes per pixel.
	Pixels []byte
	// Width is the texture width in pixels.
	Width uint32
	// Height is the texture height in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending
// GPU creation.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	Compare                                  wgpu.CompareFunction
	MaxAnisotropy                            uint16
}
