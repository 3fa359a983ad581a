package torrents

import (
	"errors"
	"fmt"
	"os"

	bencode "github.com/jackpal/bencode-go"
)

// ErrParse signals an unreadable torrent metainfo file.
var ErrParse = errors.New("torrents: parse failed")

// Metainfo is the subset of the torrent dictionary the site inspects.
type Metainfo struct {
	Announce string `bencode:"announce"`
	Info     Info   `bencode:"info"`
}

// Info is the file payload description inside a metainfo dictionary.
type Info struct {
	Name        string     `bencode:"name"`
	PieceLength int64      `bencode:"piece length"`
	Pieces      string     `bencode:"pieces"`
	Length      int64      `bencode:"length"`
	Files       []FileInfo `bencode:"files"`
}

// FileInfo is one entry of a multi-file torrent.
type FileInfo struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

// ParseFile decodes a torrent file's metainfo.
func ParseFile(path string) (*Metainfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	var meta Metainfo
	if err := bencode.Unmarshal(f, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if meta.Announce == "" {
		return nil, fmt.Errorf("%w: missing announce url", ErrParse)
	}
	return &meta, nil
}
