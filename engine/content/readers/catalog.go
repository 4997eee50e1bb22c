// Package readers holds the built-in type readers and the catalog that maps
// reader names found in containers to them.
package readers

import (
	"reflect"
	"time"

	"github.com/spaghettifunk/anima-content/engine/audio"
	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/graphics"
	"github.com/spaghettifunk/anima-content/engine/math"
)

// Default returns a new catalog holding every built-in reader. Each call
// returns an independent catalog, so host registrations never leak between
// arenas.
func Default() *xnb.Catalog {
	c := xnb.NewCatalog()
	Register(c)
	return c
}

// Register adds the built-in readers and target type names to c. It panics
// if any of them is already present.
func Register(c *xnb.Catalog) {
	for name, ctor := range builtins {
		c.AddBuiltin(name, ctor)
	}
	c.AddGeneric("ListReader", 1, newListReader)
	c.AddGeneric("ArrayReader", 1, newArrayReader)
	c.AddGeneric("DictionaryReader", 2, newDictionaryReader)
	c.AddGeneric("NullableReader", 1, newNullableReader)
	c.AddGeneric("EnumReader", 1, newEnumReader)

	for name, t := range targets {
		if err := c.RegisterTarget(name, t); err != nil {
			panic(err)
		}
	}
}

var builtins = map[string]func() xnb.TypeReader{
	"ByteReader":    primitive((*xnb.ContentReader).ReadByte),
	"SByteReader":   primitive((*xnb.ContentReader).ReadSByte),
	"Int16Reader":   primitive((*xnb.ContentReader).ReadInt16),
	"UInt16Reader":  primitive((*xnb.ContentReader).ReadUInt16),
	"Int32Reader":   primitive((*xnb.ContentReader).ReadInt32),
	"UInt32Reader":  primitive((*xnb.ContentReader).ReadUInt32),
	"Int64Reader":   primitive((*xnb.ContentReader).ReadInt64),
	"UInt64Reader":  primitive((*xnb.ContentReader).ReadUInt64),
	"SingleReader":  primitive((*xnb.ContentReader).ReadSingle),
	"DoubleReader":  primitive((*xnb.ContentReader).ReadDouble),
	"BooleanReader": primitive((*xnb.ContentReader).ReadBoolean),
	"CharReader":    primitive((*xnb.ContentReader).ReadChar),
	"StringReader":  primitive((*xnb.ContentReader).ReadString),

	"TimeSpanReader": primitive(readTimeSpan),
	"DateTimeReader": primitive(readDateTime),

	"Vector2Reader":        primitive((*xnb.ContentReader).ReadVector2),
	"Vector3Reader":        primitive((*xnb.ContentReader).ReadVector3),
	"Vector4Reader":        primitive((*xnb.ContentReader).ReadVector4),
	"QuaternionReader":     primitive((*xnb.ContentReader).ReadQuaternion),
	"MatrixReader":         primitive((*xnb.ContentReader).ReadMatrix),
	"ColorReader":          primitive((*xnb.ContentReader).ReadColor),
	"PointReader":          primitive((*xnb.ContentReader).ReadPoint),
	"RectangleReader":      primitive((*xnb.ContentReader).ReadRectangle),
	"BoundingBoxReader":    primitive((*xnb.ContentReader).ReadBoundingBox),
	"BoundingSphereReader": primitive((*xnb.ContentReader).ReadBoundingSphere),
	"PlaneReader":          primitive((*xnb.ContentReader).ReadPlane),
	"RayReader":            primitive((*xnb.ContentReader).ReadRay),

	"ExternalReferenceReader": func() xnb.TypeReader { return externalReferenceReader{} },

	"Texture2DReader":         func() xnb.TypeReader { return texture2DReader{} },
	"Texture3DReader":         func() xnb.TypeReader { return texture3DReader{} },
	"TextureCubeReader":       func() xnb.TypeReader { return textureCubeReader{} },
	"IndexBufferReader":       func() xnb.TypeReader { return indexBufferReader{} },
	"VertexDeclarationReader": func() xnb.TypeReader { return vertexDeclarationReader{} },
	"VertexBufferReader":      func() xnb.TypeReader { return vertexBufferReader{} },
	"EffectReader":            func() xnb.TypeReader { return effectReader{} },
	"SpriteFontReader":        func() xnb.TypeReader { return spriteFontReader{} },
	"SoundEffectReader":       func() xnb.TypeReader { return soundEffectReader{} },
}

// targets maps the type names used as generic arguments to Go types.
// Char maps to rune, which shares its Go type with Int32.
var targets = map[string]reflect.Type{
	"Object":  reflect.TypeFor[any](),
	"Byte":    reflect.TypeFor[uint8](),
	"SByte":   reflect.TypeFor[int8](),
	"Int16":   reflect.TypeFor[int16](),
	"UInt16":  reflect.TypeFor[uint16](),
	"Int32":   reflect.TypeFor[int32](),
	"UInt32":  reflect.TypeFor[uint32](),
	"Int64":   reflect.TypeFor[int64](),
	"UInt64":  reflect.TypeFor[uint64](),
	"Single":  reflect.TypeFor[float32](),
	"Double":  reflect.TypeFor[float64](),
	"Boolean": reflect.TypeFor[bool](),
	"Char":    reflect.TypeFor[rune](),
	"String":  reflect.TypeFor[string](),

	"TimeSpan": reflect.TypeFor[time.Duration](),
	"DateTime": reflect.TypeFor[time.Time](),

	"Vector2":        reflect.TypeFor[math.Vec2](),
	"Vector3":        reflect.TypeFor[math.Vec3](),
	"Vector4":        reflect.TypeFor[math.Vec4](),
	"Quaternion":     reflect.TypeFor[math.Quaternion](),
	"Matrix":         reflect.TypeFor[math.Mat4](),
	"Color":          reflect.TypeFor[math.Color](),
	"Point":          reflect.TypeFor[math.Point](),
	"Rectangle":      reflect.TypeFor[math.Rectangle](),
	"BoundingBox":    reflect.TypeFor[math.BoundingBox](),
	"BoundingSphere": reflect.TypeFor[math.BoundingSphere](),
	"Plane":          reflect.TypeFor[math.Plane](),
	"Ray":            reflect.TypeFor[math.Ray](),

	"Texture2D":         reflect.TypeFor[*graphics.Texture2D](),
	"Texture3D":         reflect.TypeFor[*graphics.Texture3D](),
	"TextureCube":       reflect.TypeFor[*graphics.TextureCube](),
	"IndexBuffer":       reflect.TypeFor[*graphics.IndexBuffer](),
	"VertexBuffer":      reflect.TypeFor[*graphics.VertexBuffer](),
	"VertexDeclaration": reflect.TypeFor[*graphics.VertexDeclaration](),
	"Effect":            reflect.TypeFor[*graphics.Effect](),
	"SpriteFont":        reflect.TypeFor[*graphics.SpriteFont](),
	"SoundEffect":       reflect.TypeFor[*audio.SoundEffect](),
}
