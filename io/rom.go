package io

import (
	"encoding/binary"
	"io"
)

// WORD_SIZE is the size in bytes of an image word.
const WORD_SIZE = 4

// Rom is a raw word image: little-endian 32-bit words, no header.
type Rom struct {
	Data []uint32
}

// Unmarshal replaces the image with the contents of a stream.
// The stream length must be a multiple of WORD_SIZE.
func (rc *Rom) Unmarshal(r io.Reader) (err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(raw)%WORD_SIZE != 0 {
		err = ErrMalformedInput
		return
	}

	rc.Data = make([]uint32, len(raw)/WORD_SIZE)
	for n := range rc.Data {
		rc.Data[n] = binary.LittleEndian.Uint32(raw[n*WORD_SIZE:])
	}

	return
}

// Marshal writes the image to a stream.
func (rc *Rom) Marshal(w io.Writer) (err error) {
	raw := make([]byte, 0, len(rc.Data)*WORD_SIZE)
	for _, word := range rc.Data {
		raw = binary.LittleEndian.AppendUint32(raw, word)
	}

	_, err = w.Write(raw)
	return
}
