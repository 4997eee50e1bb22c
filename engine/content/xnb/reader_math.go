package xnb

import "github.com/spaghettifunk/anima-content/engine/math"

// Inline readers for the math value types. They are used both by the math
// type readers and by composite readers that embed these values directly.

func (r *ContentReader) ReadVector2() (math.Vec2, error) {
	var v math.Vec2
	var err error
	if v.X, err = r.ReadSingle(); err != nil {
		return v, err
	}
	v.Y, err = r.ReadSingle()
	return v, err
}

func (r *ContentReader) ReadVector3() (math.Vec3, error) {
	var v math.Vec3
	var err error
	if v.X, err = r.ReadSingle(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadSingle(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadSingle()
	return v, err
}

func (r *ContentReader) ReadVector4() (math.Vec4, error) {
	var v math.Vec4
	var err error
	if v.X, err = r.ReadSingle(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadSingle(); err != nil {
		return v, err
	}
	if v.Z, err = r.ReadSingle(); err != nil {
		return v, err
	}
	v.W, err = r.ReadSingle()
	return v, err
}

func (r *ContentReader) ReadQuaternion() (math.Quaternion, error) {
	v, err := r.ReadVector4()
	return math.Quaternion(v), err
}

// ReadMatrix reads sixteen floats, row major.
func (r *ContentReader) ReadMatrix() (math.Mat4, error) {
	var m math.Mat4
	for i := range m.Data {
		f, err := r.ReadSingle()
		if err != nil {
			return m, err
		}
		m.Data[i] = f
	}
	return m, nil
}

// ReadColor reads a packed colour, one byte per channel in R G B A order.
func (r *ContentReader) ReadColor() (math.Color, error) {
	b, err := r.readN(4)
	if err != nil {
		return math.Color{}, err
	}
	return math.Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

func (r *ContentReader) ReadPoint() (math.Point, error) {
	var p math.Point
	var err error
	if p.X, err = r.ReadInt32(); err != nil {
		return p, err
	}
	p.Y, err = r.ReadInt32()
	return p, err
}

func (r *ContentReader) ReadRectangle() (math.Rectangle, error) {
	var rect math.Rectangle
	for _, dst := range []*int32{&rect.X, &rect.Y, &rect.Width, &rect.Height} {
		v, err := r.ReadInt32()
		if err != nil {
			return rect, err
		}
		*dst = v
	}
	return rect, nil
}

func (r *ContentReader) ReadBoundingBox() (math.BoundingBox, error) {
	var b math.BoundingBox
	var err error
	if b.Min, err = r.ReadVector3(); err != nil {
		return b, err
	}
	b.Max, err = r.ReadVector3()
	return b, err
}

func (r *ContentReader) ReadBoundingSphere() (math.BoundingSphere, error) {
	var s math.BoundingSphere
	var err error
	if s.Center, err = r.ReadVector3(); err != nil {
		return s, err
	}
	s.Radius, err = r.ReadSingle()
	return s, err
}

func (r *ContentReader) ReadPlane() (math.Plane, error) {
	var p math.Plane
	var err error
	if p.Normal, err = r.ReadVector3(); err != nil {
		return p, err
	}
	p.D, err = r.ReadSingle()
	return p, err
}

func (r *ContentReader) ReadRay() (math.Ray, error) {
	var ray math.Ray
	var err error
	if ray.Position, err = r.ReadVector3(); err != nil {
		return ray, err
	}
	ray.Direction, err = r.ReadVector3()
	return ray, err
}
