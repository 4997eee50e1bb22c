package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/** @brief a 4x4 matrix, stored row major (M11, M12, ... M44). */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// At returns the element at the given zero based row and column.
func (m Mat4) At(row, col int) float32 {
	return m.Data[row*4+col]
}

/** @brief A 32-bit packed RGBA colour. */
type Color struct {
	R, G, B, A uint8
}

// FromVec4 builds a colour from normalized components, clamping to [0, 1].
func FromVec4(v Vec4) Color {
	conv := func(f float32) uint8 {
		return uint8(Clamp(f, 0, 1)*255 + 0.5)
	}
	return Color{R: conv(v.X), G: conv(v.Y), B: conv(v.Z), A: conv(v.W)}
}

// Vec4 returns the colour as normalized components.
func (c Color) Vec4() Vec4 {
	return Vec4{
		X: float32(c.R) / 255,
		Y: float32(c.G) / 255,
		Z: float32(c.B) / 255,
		W: float32(c.A) / 255,
	}
}

// Packed returns the colour as a little endian RGBA word.
func (c Color) Packed() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

/** @brief An integer point in 2D space. */
type Point struct {
	X, Y int32
}

/** @brief An axis aligned integer rectangle. */
type Rectangle struct {
	X, Y, Width, Height int32
}

func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

/**
 * @brief Represents the extents of a 3d object.
 */
type BoundingBox struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

type BoundingSphere struct {
	Center Vec3
	Radius float32
}

/** @brief A plane described by its normal and distance from the origin. */
type Plane struct {
	Normal Vec3
	D      float32
}

type Ray struct {
	Position  Vec3
	Direction Vec3
}
