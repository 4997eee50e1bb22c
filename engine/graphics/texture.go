package graphics

/** @brief Pixel layout of texture data. Values match the XNA SurfaceFormat enum. */
type SurfaceFormat int32

const (
	SurfaceFormatColor SurfaceFormat = iota
	SurfaceFormatBgr565
	SurfaceFormatBgra5551
	SurfaceFormatBgra4444
	SurfaceFormatDxt1
	SurfaceFormatDxt3
	SurfaceFormatDxt5
	SurfaceFormatNormalizedByte2
	SurfaceFormatNormalizedByte4
	SurfaceFormatRgba1010102
	SurfaceFormatRg32
	SurfaceFormatRgba64
	SurfaceFormatAlpha8
	SurfaceFormatSingle
	SurfaceFormatVector2
	SurfaceFormatVector4
	SurfaceFormatHalfSingle
	SurfaceFormatHalfVector2
	SurfaceFormatHalfVector4
	SurfaceFormatHdrBlendable
)

/**
 * @brief Represents a two-dimensional texture.
 */
type Texture2D struct {
	resource

	/** @brief The pixel format of every level. */
	Format SurfaceFormat
	/** @brief The texture Width. */
	Width int32
	/** @brief The texture Height. */
	Height int32
	/** @brief Mip levels, largest first. */
	Levels [][]byte
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
}

// NewTexture2D uploads a texture to dev.
func NewTexture2D(dev Device, format SurfaceFormat, width, height int32, levels [][]byte) (*Texture2D, error) {
	t := &Texture2D{}
	if err := t.Set(dev, format, width, height, levels); err != nil {
		return nil, err
	}
	return t, nil
}

// Set replaces the texture contents in place, keeping the object identity.
func (t *Texture2D) Set(dev Device, format SurfaceFormat, width, height int32, levels [][]byte) error {
	if err := t.upload(dev, ResourceTexture2D, levels); err != nil {
		return err
	}
	t.Format = format
	t.Width = width
	t.Height = height
	t.Levels = levels
	t.Generation++
	return nil
}

/**
 * @brief Represents a volume texture.
 */
type Texture3D struct {
	resource

	Format     SurfaceFormat
	Width      int32
	Height     int32
	Depth      int32
	Levels     [][]byte
	Generation uint32
}

func (t *Texture3D) Set(dev Device, format SurfaceFormat, width, height, depth int32, levels [][]byte) error {
	if err := t.upload(dev, ResourceTexture3D, levels); err != nil {
		return err
	}
	t.Format = format
	t.Width = width
	t.Height = height
	t.Depth = depth
	t.Levels = levels
	t.Generation++
	return nil
}

/** @brief Cube faces in storage order. */
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
)

/**
 * @brief A cube texture, used for cubemaps.
 */
type TextureCube struct {
	resource

	Format SurfaceFormat
	Size   int32
	// Faces holds the mip levels of each face, indexed by CubeFace.
	Faces      [6][][]byte
	Generation uint32
}

func (t *TextureCube) Set(dev Device, format SurfaceFormat, size int32, faces [6][][]byte) error {
	var flat [][]byte
	for _, levels := range faces {
		flat = append(flat, levels...)
	}
	if err := t.upload(dev, ResourceTextureCube, flat); err != nil {
		return err
	}
	t.Format = format
	t.Size = size
	t.Faces = faces
	t.Generation++
	return nil
}
