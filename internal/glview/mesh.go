// Package glview provides a minimal OpenGL viewer for an Avatar: mesh
// upload, shader compilation, an orbit camera, and a palette texture,
// adapted from the teacher's chunk rendering path to the mesher's
// per-bone geometry.
package glview

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelavatar/internal/mesher"
)

// AvatarMesh owns the OpenGL buffers for one bone's posed geometry.
type AvatarMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	VertexCount int32
	IndexCount  int32
}

// vertexAttribWidth is the component count of every field the mesher
// packs into a vertex (position, normal, color are each a vec3). Walking
// mesher.VertexSize in strides of this width, rather than hardcoding one
// glVertexAttribPointer call per field, is what lets this upload follow
// the mesher's own vertex layout instead of duplicating it by hand.
const vertexAttribWidth = 3

// NewAvatarMesh uploads geometry's vertex/index buffers and configures
// one vertex attribute per vertexAttribWidth-wide field in
// mesher.VertexSize's layout (position, normal, color — no per-vertex
// AO, unlike the chunk mesh this is adapted from).
func NewAvatarMesh(geometry *mesher.Geometry) *AvatarMesh {
	if geometry == nil || geometry.VertexCount == 0 {
		return nil
	}

	m := &AvatarMesh{
		VertexCount: int32(geometry.VertexCount),
		IndexCount:  int32(geometry.IndexCount),
	}

	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)

	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(geometry.Vertices)*4, gl.Ptr(geometry.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geometry.Indices)*4, gl.Ptr(geometry.Indices), gl.STATIC_DRAW)

	stride := int32(mesher.VertexSize * 4)
	fieldCount := mesher.VertexSize / vertexAttribWidth
	for field := 0; field < fieldCount; field++ {
		index := uint32(field)
		offset := field * vertexAttribWidth * 4
		gl.VertexAttribPointerWithOffset(index, vertexAttribWidth, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(index)
	}

	gl.BindVertexArray(0)
	return m
}

// Draw renders the mesh.
func (m *AvatarMesh) Draw() {
	if m == nil || m.VAO == 0 {
		return
	}
	gl.BindVertexArray(m.VAO)
	gl.DrawElements(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Delete releases the mesh's OpenGL buffers.
func (m *AvatarMesh) Delete() {
	if m == nil {
		return
	}
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
		m.VAO = 0
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
		m.VBO = 0
	}
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
		m.EBO = 0
	}
}

// AvatarRenderer owns one AvatarMesh per bone and rebuilds them from an
// Avatar's posed geometry whenever asked.
type AvatarRenderer struct {
	meshes map[string]*AvatarMesh
}

// NewAvatarRenderer creates an empty renderer.
func NewAvatarRenderer() *AvatarRenderer {
	return &AvatarRenderer{meshes: make(map[string]*AvatarMesh)}
}

// UpdateBone replaces the mesh stored for boneName with one built from
// geometry (nil clears it).
func (r *AvatarRenderer) UpdateBone(boneName string, geometry *mesher.Geometry) {
	if old, ok := r.meshes[boneName]; ok {
		old.Delete()
		delete(r.meshes, boneName)
	}
	if geometry != nil && geometry.VertexCount > 0 {
		r.meshes[boneName] = NewAvatarMesh(geometry)
	}
}

// Draw renders every bone mesh.
func (r *AvatarRenderer) Draw() {
	for _, mesh := range r.meshes {
		mesh.Draw()
	}
}

// MeshCount returns the number of bone meshes currently uploaded.
func (r *AvatarRenderer) MeshCount() int {
	return len(r.meshes)
}

// Cleanup deletes every bone mesh.
func (r *AvatarRenderer) Cleanup() {
	for id, mesh := range r.meshes {
		mesh.Delete()
		delete(r.meshes, id)
	}
}
