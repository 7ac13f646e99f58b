package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// SentenceRecordMUS serializes SentenceRecord values in the MUS format.
var SentenceRecordMUS = sentenceRecordMUS{}

type sentenceRecordMUS struct{}

func (s sentenceRecordMUS) Marshal(v SentenceRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Int64.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
}

func (s sentenceRecordMUS) Unmarshal(bs []byte) (v SentenceRecord, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = ID(id)
	var n1 int
	v.Position, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt = time.UnixMicro(micros).UTC()
	return
}

func (s sentenceRecordMUS) Size(v SentenceRecord) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Int64.Size(v.Position)
	size += ord.String.Size(v.Text)
	return size + varint.Int64.Size(v.InsertedAt.UnixMicro())
}

// VectorMUS serializes embedding vectors in the MUS format.
// Elements are stored as their IEEE 754 bit patterns.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

func (s vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func (s vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrInvalidVectorLength
	}
	v = make([]float32, length)
	var (
		bits uint32
		n1   int
	)
	for i := range v {
		bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func (s vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}
