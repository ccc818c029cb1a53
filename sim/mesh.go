package sim

import "rovernet/codec"

// Mesh 只记录当前颜色
type Mesh struct {
	color codec.Color
}

func NewMesh() *Mesh { return &Mesh{color: codec.Color{R: 1, G: 1, B: 1, A: 1}} }

func (m *Mesh) SetColor(c codec.Color) { m.color = c }
func (m *Mesh) Color() codec.Color { return m.color }
