// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeySize is the length in bytes of every key produced by [DeriveKey].
const DerivedKeySize = 32

// # Key Derivation

// DeriveKey expands credential material into a fixed-size signing key.
//
// The label separates key families: the same bytes under two labels never
// produce the same key. Each part is length-prefixed before hashing so that
// ("ab", "c") and ("a", "bc") yield different keys.
//
// DeriveKey is a pure function. Callers must only pass material that is not
// publicly observable (password digests, federation ids), otherwise tokens
// signed with the result become forgeable.
func DeriveKey(label string, parts ...[]byte) []byte {
	reader := hkdf.New(sha256.New, encodeParts(parts), nil, []byte(label))

	key := make([]byte, DerivedKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		// HKDF-SHA256 only fails past 255*32 bytes of output.
		panic("sec: hkdf expansion failed: " + err.Error())
	}
	return key
}

// encodeParts concatenates parts with a 4-byte big-endian length prefix each.
func encodeParts(parts [][]byte) []byte {
	size := 0
	for _, part := range parts {
		size += 4 + len(part)
	}

	out := make([]byte, 0, size)
	for _, part := range parts {
		out = binary.BigEndian.AppendUint32(out, uint32(len(part)))
		out = append(out, part...)
	}
	return out
}
