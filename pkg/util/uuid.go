package util

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher
func Md5ThenHex(value []byte) string {
	sum := md5.Sum(value)
	return hex.EncodeToString(sum[:])
}

// HashUUID names any json-serializable value by the md5 of its encoding.
// Equal values give equal ids; an unencodable value gives "".
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return fromSum(md5.Sum(raw))
}

// RasterUUID fingerprints decoded pixels together with their dimensions, so
// two rasters holding the same bytes in different shapes differ.
func RasterUUID(width, height int, pix []byte) string {
	h := md5.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(width))
	binary.BigEndian.PutUint32(dims[4:], uint32(height))
	h.Write(dims[:])
	h.Write(pix)
	var sum [md5.Size]byte
	copy(sum[:], h.Sum(nil))
	return fromSum(sum)
}

func fromSum(sum [md5.Size]byte) string {
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return ""
	}
	return id.String()
}
