package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// FileFlags encodes metadata about how a file entered the set.
type FileFlags uint8

const (
	// FileVirtual indicates the file was added from memory (test, stdin).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM was stripped during load.
	FileHadBOM
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offset of each line start
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position, both components 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileSet manages a collection of source files.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores a file from bytes, computes the line index and hash, and
// returns its FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    filepath.ToSlash(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[filepath.ToSlash(path)] = id
	return id
}

// Load reads a file from disk, strips a UTF-8 BOM if present, and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		content = content[3:]
		flags |= FileHadBOM
	}
	return fs.Add(path, content, flags), nil
}

// Get returns the file for id.
func (fs *FileSet) Get(id FileID) (*File, bool) {
	if int(id) >= len(fs.files) {
		return nil, false
	}
	return &fs.files[id], true
}

// Len returns the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Position resolves a byte offset inside a file to a line/column pair.
func (fs *FileSet) Position(id FileID, offset uint32) (LineCol, bool) {
	f, ok := fs.Get(id)
	if !ok {
		return LineCol{}, false
	}
	idx := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	line, err := safecast.Conv[uint32](idx + 1)
	if err != nil {
		return LineCol{}, false
	}
	return LineCol{Line: line, Col: offset - f.LineIdx[idx] + 1}, true
}

// SpanText returns the source text covered by a span.
func (fs *FileSet) SpanText(sp Span) string {
	f, ok := fs.Get(sp.File)
	if !ok {
		return ""
	}
	if int(sp.Start) > len(f.Content) || int(sp.End) > len(f.Content) || sp.Start > sp.End {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// Line returns the full text of a 1-based line number.
func (fs *FileSet) Line(id FileID, line uint32) string {
	f, ok := fs.Get(id)
	if !ok || line == 0 || int(line) > len(f.LineIdx) {
		return ""
	}
	start := f.LineIdx[line-1]
	end := uint32(len(f.Content))
	if int(line) < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	text := f.Content[start:end]
	text = bytes.TrimRight(text, "\r\n")
	return string(text)
}

func buildLineIndex(content []byte) []uint32 {
	idx := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)+1)
		}
	}
	return idx
}
