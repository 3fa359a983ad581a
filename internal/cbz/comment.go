package cbz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// End-of-central-directory record constants.
const (
	eocdSignature  = "PK\x05\x06"
	eocdFixedSize  = 22
	maxCommentSize = 0xFFFF
)

var errNoEOCD = errors.New("cbz: no end-of-central-directory record")

// findEOCD locates the offset of the EOCD record, scanning backward from
// the end of the file. The record is the last occurrence of its signature.
func findEOCD(data []byte) (int, error) {
	if len(data) < eocdFixedSize {
		return 0, errNoEOCD
	}
	floor := len(data) - eocdFixedSize - maxCommentSize
	if floor < 0 {
		floor = 0
	}
	for offset := len(data) - eocdFixedSize; offset >= floor; offset-- {
		if !bytes.HasPrefix(data[offset:], []byte(eocdSignature)) {
			continue
		}
		commentLen := int(binary.LittleEndian.Uint16(data[offset+20 : offset+22]))
		if offset+eocdFixedSize+commentLen == len(data) {
			return offset, nil
		}
	}
	return 0, errNoEOCD
}

// WriteComment sets the ZIP archive comment on an existing file. External
// archivers cannot write comments, so the record is patched in place: the
// comment length field is updated and the bytes appended after the EOCD.
func WriteComment(path, comment string) error {
	if len(comment) > maxCommentSize {
		return fmt.Errorf("cbz: comment exceeds %d bytes", maxCommentSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	offset, err := findEOCD(data)
	if err != nil {
		return err
	}

	out := make([]byte, 0, offset+eocdFixedSize+len(comment))
	out = append(out, data[:offset+eocdFixedSize]...)
	binary.LittleEndian.PutUint16(out[offset+20:offset+22], uint16(len(comment)))
	out = append(out, comment...)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// ReadComment returns the ZIP archive comment.
func ReadComment(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read archive: %w", err)
	}
	offset, err := findEOCD(data)
	if err != nil {
		return "", err
	}
	return string(data[offset+eocdFixedSize:]), nil
}
