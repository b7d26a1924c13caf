package convert

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"stg-renderer/internal/utils"
)

const (
	maxPackString  = 4096
	maxPackEntries = 1 << 20
)

// Entry is one file stored in a pack. Offset is relative to the end of the
// header.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Pack is an opened .pkg archive: a version string, an entry table, then
// the concatenated file data.
type Pack struct {
	Version string
	Entries []Entry

	r      io.ReaderAt
	base   int64
	closer io.Closer
	index  map[string]int
}

func readPackString(r io.Reader) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if size > maxPackString {
		return "", fmt.Errorf("%w: string of %d bytes", ErrCorrupt, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// OpenPack opens the archive at path. Close releases the file.
func OpenPack(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p, err := NewPack(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pack %s: %w", path, err)
	}
	p.closer = f
	return p, nil
}

// NewPack reads the header of an archive held by r.
func NewPack(r io.ReaderAt) (*Pack, error) {
	sr := io.NewSectionReader(r, 0, 1<<62)
	version, err := readPackString(sr)
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(sr, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if count > maxPackEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrCorrupt, count)
	}
	utils.Debug("Pack: version %s, %d files", version, count)

	p := &Pack{Version: version, Entries: make([]Entry, count), r: r, index: make(map[string]int, count)}
	for i := range p.Entries {
		name, err := readPackString(sr)
		if err != nil {
			return nil, err
		}
		var span [2]uint32
		if err := binary.Read(sr, binary.LittleEndian, &span); err != nil {
			return nil, err
		}
		p.Entries[i] = Entry{Name: name, Offset: span[0], Size: span[1]}
		p.index[name] = i
	}
	if p.base, err = sr.Seek(0, io.SeekCurrent); err != nil {
		return nil, err
	}
	return p, nil
}

// Open returns a reader over the named entry.
func (p *Pack) Open(name string) (io.Reader, error) {
	i, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("pack entry %q: %w", name, os.ErrNotExist)
	}
	e := p.Entries[i]
	return io.NewSectionReader(p.r, p.base+int64(e.Offset), int64(e.Size)), nil
}

// ReadFile returns the contents of the named entry.
func (p *Pack) ReadFile(name string) ([]byte, error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pack entry %q: %w", name, err)
	}
	if len(data) != int(p.Entries[p.index[name]].Size) {
		return nil, fmt.Errorf("%w: entry %q truncated", ErrCorrupt, name)
	}
	return data, nil
}

// Extract writes every entry below dir. Entries whose names would escape
// dir are rejected.
func (p *Pack) Extract(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, e := range p.Entries {
		if !filepath.IsLocal(e.Name) {
			return fmt.Errorf("%w: entry name %q", ErrCorrupt, e.Name)
		}
		if i%10 == 0 || i == len(p.Entries)-1 {
			utils.Debug("Pack: extracting %d/%d: %s", i+1, len(p.Entries), e.Name)
		}
		dest := filepath.Join(dir, e.Name)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		data, err := p.ReadFile(e.Name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}
	utils.Debug("Pack: extracted %d files to %s", len(p.Entries), dir)
	return nil
}

func (p *Pack) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
