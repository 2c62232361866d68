package rig

// VertexWeight binds one vertex to a group with a weight.
type VertexWeight struct {
	Vertex int
	Weight float64
}

// VertexGroup associates mesh vertices with a bone. The group references the
// bone by stable ID; Name mirrors the bone's current label for interchange
// and diagnostics and is rewritten whenever the bone is renamed.
type VertexGroup struct {
	Bone    BoneID
	Name    string
	Weights []VertexWeight
}

// SkinBinding is the per-vertex weighted association between a mesh and the
// bones of one skeleton.
type SkinBinding struct {
	Skeleton *Skeleton
	Groups   []VertexGroup
}

// Group returns the vertex group bound to the given bone, or nil.
func (b *SkinBinding) Group(id BoneID) *VertexGroup {
	for i := range b.Groups {
		if b.Groups[i].Bone == id {
			return &b.Groups[i]
		}
	}
	return nil
}

// Mesh is skinned geometry. Vertex attribute slices are parallel and indexed
// by the Indices triangle list; Joints/Weights use glTF's four-influence
// layout with joint slots indexing Binding.Groups.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Indices   []uint32
	Joints    [][4]uint16
	Weights   [][4]float32
	Binding   SkinBinding
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}
