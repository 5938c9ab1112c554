package common

import (
	"math"
	"math/rand"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Lerp linearly interpolates between a and b by factor t. t is not clamped.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: a + (b - a) * t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// RandomPoint samples a uniformly distributed point inside the box, drawing
// an independent factor per axis from rng. Each component is the blend
// r*min + (1-r)*max, so degenerate boxes (Min == Max on an axis) pin that
// axis exactly.
//
// Parameters:
//   - rng: the random source to draw from
//   - box: the volume to sample
//
// Returns:
//   - mgl32.Vec3: a point inside the box
func RandomPoint(rng *rand.Rand, box Box) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		r := rng.Float32()
		p[i] = r*box.Min[i] + (1-r)*box.Max[i]
	}
	return p
}

// AimMatrix returns the rotation that carries the +Y axis onto dir, used to
// orient directional particle shapes along their direction of travel. A zero
// or near-zero dir returns the identity.
//
// Parameters:
//   - dir: the target direction, not required to be normalized
//
// Returns:
//   - mgl32.Mat4: the aiming rotation
func AimMatrix(dir mgl32.Vec3) mgl32.Mat4 {
	if dir.LenSqr() < 1e-12 {
		return mgl32.Ident4()
	}
	return mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, dir).Mat4()
}

// Perspective creates a perspective projection matrix.
// Uses depth range convention compatible with WebGPU clip space [0, 1],
// unlike mgl32.Perspective which targets the OpenGL [-1, 1] range.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1.0
	m[14] = (near * far) / (near - far)
	return m
}
