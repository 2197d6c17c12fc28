// Binary encoding for snapshot document records.
//
// Record format v1 (little-endian):
//
//	version:    uint8 (1)
//	id:         uint64
//	modTime:    int64 (unix nanoseconds)
//	path:       uint16 length + bytes
//	title:      uint16 length + bytes
//	aliasCount: uint16
//	aliases:    aliasCount × (uint16 length + bytes)
//	lineCount:  uint32
//	lines:      lineCount × (uint32 length + bytes)
package bbolt

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/corey/vaultlink/internal/ports"
)

const recordVersion = 1

// encodeDocument encodes doc into a single pre-sized buffer.
func encodeDocument(doc *ports.Document) ([]byte, error) {
	if len(doc.Path) > 0xFFFF || len(doc.Title) > 0xFFFF {
		return nil, fmt.Errorf("path or title too long")
	}
	if len(doc.Aliases) > 0xFFFF {
		return nil, fmt.Errorf("too many aliases: %d", len(doc.Aliases))
	}

	size := 1 + 8 + 8 + 2 + len(doc.Path) + 2 + len(doc.Title) + 2 + 4
	for _, a := range doc.Aliases {
		if len(a) > 0xFFFF {
			return nil, fmt.Errorf("alias too long: %d bytes", len(a))
		}
		size += 2 + len(a)
	}
	for _, l := range doc.Lines {
		size += 4 + len(l)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, recordVersion)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(doc.ID))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(doc.ModTime.UnixNano()))
	buf = appendString16(buf, doc.Path)
	buf = appendString16(buf, doc.Title)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(doc.Aliases)))
	for _, a := range doc.Aliases {
		buf = appendString16(buf, a)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(doc.Lines)))
	for _, l := range doc.Lines {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(l)))
		buf = append(buf, l...)
	}
	return buf, nil
}

func appendString16(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// decodeDocument decodes a record. Every read is bounds-checked to avoid
// panics on corrupt data.
func decodeDocument(data []byte) (*ports.Document, error) {
	r := reader{data: data}

	version := r.u8()
	if r.err == nil && version != recordVersion {
		return nil, fmt.Errorf("unsupported record version %d", version)
	}
	doc := &ports.Document{
		ID:      ports.DocID(r.u64()),
		ModTime: time.Unix(0, int64(r.u64())),
		Path:    r.str(int(r.u16())),
		Title:   r.str(int(r.u16())),
	}
	if n := int(r.u16()); n > 0 {
		doc.Aliases = make([]string, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			doc.Aliases = append(doc.Aliases, r.str(int(r.u16())))
		}
	}
	n := int(r.u32())
	if r.err == nil && n > len(r.data)-r.off {
		// corrupt count; refuse before allocating
		return nil, fmt.Errorf("line count %d exceeds record size", n)
	}
	doc.Lines = make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		doc.Lines = append(doc.Lines, r.str(int(r.u32())))
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.data) {
		return nil, fmt.Errorf("%d trailing bytes", len(r.data)-r.off)
	}
	return doc, nil
}

// reader is a sticky-error cursor over a record.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("truncated at offset %d (need %d bytes)", r.off, n)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// str copies n bytes out, so results outlive the bbolt transaction.
func (r *reader) str(n int) string {
	return string(r.take(n))
}
