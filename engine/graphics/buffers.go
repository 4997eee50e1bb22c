package graphics

type IndexBuffer struct {
	resource

	// SixteenBit is true for 16-bit indices, false for 32-bit.
	SixteenBit bool
	Data       []byte
	Generation uint32
}

func (b *IndexBuffer) Set(dev Device, sixteenBit bool, data []byte) error {
	if err := b.upload(dev, ResourceIndexBuffer, [][]byte{data}); err != nil {
		return err
	}
	b.SixteenBit = sixteenBit
	b.Data = data
	b.Generation++
	return nil
}

// IndexCount returns the number of indices held by the buffer.
func (b *IndexBuffer) IndexCount() int {
	if b.SixteenBit {
		return len(b.Data) / 2
	}
	return len(b.Data) / 4
}

type VertexElementFormat int32

const (
	VertexElementFormatSingle VertexElementFormat = iota
	VertexElementFormatVector2
	VertexElementFormatVector3
	VertexElementFormatVector4
	VertexElementFormatColor
	VertexElementFormatByte4
	VertexElementFormatShort2
	VertexElementFormatShort4
	VertexElementFormatNormalizedShort2
	VertexElementFormatNormalizedShort4
	VertexElementFormatHalfVector2
	VertexElementFormatHalfVector4
)

type VertexElementUsage int32

const (
	VertexElementUsagePosition VertexElementUsage = iota
	VertexElementUsageColor
	VertexElementUsageTextureCoordinate
	VertexElementUsageNormal
	VertexElementUsageBinormal
	VertexElementUsageTangent
	VertexElementUsageBlendIndices
	VertexElementUsageBlendWeight
	VertexElementUsageDepth
	VertexElementUsageFog
	VertexElementUsagePointSize
	VertexElementUsageSample
	VertexElementUsageTessellateFactor
)

type VertexElement struct {
	Offset     uint32
	Format     VertexElementFormat
	Usage      VertexElementUsage
	UsageIndex uint32
}

// VertexDeclaration describes the layout of one vertex. It lives on the CPU
// only.
type VertexDeclaration struct {
	Stride   uint32
	Elements []VertexElement
}

type VertexBuffer struct {
	resource

	Declaration *VertexDeclaration
	VertexCount uint32
	Data        []byte
	Generation  uint32
}

func (b *VertexBuffer) Set(dev Device, decl *VertexDeclaration, count uint32, data []byte) error {
	if err := b.upload(dev, ResourceVertexBuffer, [][]byte{data}); err != nil {
		return err
	}
	b.Declaration = decl
	b.VertexCount = count
	b.Data = data
	b.Generation++
	return nil
}
