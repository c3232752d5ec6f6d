// Package vectorindex implements the nearest-neighbor search structure
// built over a document's chunk embeddings. The index is brute-force
// cosine similarity over parallel chunk/vector slices and serializes to a
// compact little-endian binary format for on-disk persistence.
package vectorindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"pdfqa/internal/domain/entity"
)

// Artifact header. The loader rejects anything that does not start with
// the magic bytes and the current version, treating it as corrupt.
const (
	magic   = "PQVX"
	version = 1
)

// Index is a searchable set of (chunk text, embedding) pairs.
type Index struct {
	chunks []entity.Chunk
	dim    int
	mags   []float64
}

// Build constructs the index from embedded chunks. All embeddings must be
// non-empty and share one dimension.
func Build(chunks []entity.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("vectorindex: no chunks to index")
	}
	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return nil, errors.New("vectorindex: empty embedding")
	}
	mags := make([]float64, len(chunks))
	for i := range chunks {
		if len(chunks[i].Embedding) != dim {
			return nil, fmt.Errorf("vectorindex: inconsistent embedding dims %d vs %d", len(chunks[i].Embedding), dim)
		}
		mags[i] = magnitude(chunks[i].Embedding)
	}
	return &Index{
		chunks: append([]entity.Chunk(nil), chunks...),
		dim:    dim,
		mags:   mags,
	}, nil
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	return len(i.chunks)
}

// Search returns up to k chunks ordered by descending cosine similarity
// to the query embedding.
func (i *Index) Search(query []float32, k int) ([]entity.ScoredChunk, error) {
	if len(query) != i.dim {
		return nil, fmt.Errorf("vectorindex: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := magnitude(query)
	if qm == 0 {
		return nil, nil
	}

	scored := make([]entity.ScoredChunk, 0, len(i.chunks))
	for j := range i.chunks {
		if i.mags[j] == 0 {
			continue
		}
		s := dot(query, i.chunks[j].Embedding) / (qm * i.mags[j])
		if math.IsNaN(s) {
			continue
		}
		scored = append(scored, entity.ScoredChunk{Text: i.chunks[j].Text, Score: s})
	}
	sort.Slice(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })

	if k <= 0 || k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// MarshalBinary encodes magic, version, dim(uint32), n(uint32), then per
// chunk: textLen(uint32), text bytes, embedding float32[dim].
func (i *Index) MarshalBinary() ([]byte, error) {
	size := len(magic) + 1 + 8
	for j := range i.chunks {
		size += 4 + len(i.chunks[j].Text) + 4*i.dim
	}

	out := make([]byte, 0, size)
	out = append(out, magic...)
	out = append(out, version)
	out = binary.LittleEndian.AppendUint32(out, uint32(i.dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.chunks)))
	for j := range i.chunks {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(i.chunks[j].Text)))
		out = append(out, i.chunks[j].Text...)
		for _, v := range i.chunks[j].Embedding {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

// UnmarshalBinary restores an index, rejecting unknown or truncated data.
func (i *Index) UnmarshalBinary(data []byte) error {
	header := len(magic) + 1 + 8
	if len(data) < header {
		return errors.New("vectorindex: artifact too short")
	}
	if string(data[:len(magic)]) != magic {
		return errors.New("vectorindex: not an index artifact")
	}
	if data[len(magic)] != version {
		return fmt.Errorf("vectorindex: unsupported artifact version %d", data[len(magic)])
	}

	off := len(magic) + 1
	getU32 := func() (uint32, error) {
		if off+4 > len(data) {
			return 0, errors.New("vectorindex: truncated artifact")
		}
		v := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
		return v, nil
	}

	dimU, err := getU32()
	if err != nil {
		return err
	}
	nU, err := getU32()
	if err != nil {
		return err
	}
	dim, n := int(dimU), int(nU)
	if dim <= 0 || n <= 0 {
		return errors.New("vectorindex: empty artifact")
	}

	chunks := make([]entity.Chunk, n)
	for j := 0; j < n; j++ {
		textLen, err := getU32()
		if err != nil {
			return err
		}
		if off+int(textLen) > len(data) {
			return errors.New("vectorindex: truncated chunk text")
		}
		chunks[j].Text = string(data[off : off+int(textLen)])
		off += int(textLen)

		if off+4*dim > len(data) {
			return errors.New("vectorindex: truncated embedding")
		}
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		chunks[j].Embedding = vec
	}

	built, err := Build(chunks)
	if err != nil {
		return err
	}
	*i = *built
	return nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
