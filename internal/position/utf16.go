package position

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 code unit offset within a line to a byte offset.
// Browsers and editors count columns in UTF-16 code units while tree-sitter reports bytes.
// A target falling inside a surrogate pair is clamped to the start of the rune.
func UTF16ToByteOffset(s string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}

	units := 0
	byteOffset := 0

	for byteOffset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			byteOffset++
			units++
			continue
		}

		runeUTF16Len := utf16.RuneLen(r)
		if runeUTF16Len == 2 && units+1 == utf16Col {
			break
		}

		units += runeUTF16Len
		byteOffset += size
	}

	return byteOffset
}

// ByteOffsetToUTF16 converts a byte offset within a line to a UTF-16 code unit offset.
func ByteOffsetToUTF16(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(s) {
		byteOffset = len(s)
	}

	utf16Count := 0
	currentOffset := 0

	for currentOffset < byteOffset {
		r, size := utf8.DecodeRuneInString(s[currentOffset:])
		if r == utf8.RuneError && size == 0 {
			break
		}
		if currentOffset+size > byteOffset {
			break
		}
		utf16Count += utf16.RuneLen(r)
		currentOffset += size
	}
	return utf16Count
}

// StringLengthUTF16 returns the length of a string in UTF-16 code units.
func StringLengthUTF16(s string) int {
	utf16Count := 0
	for _, r := range s {
		utf16Count += utf16.RuneLen(r)
	}
	return utf16Count
}

// LineIndex maps byte offsets of a source text to line/column pairs.
type LineIndex struct {
	src    string
	starts []int // byte offset where each line begins
}

// NewLineIndex indexes the line starts of src. "\r\n" and "\n" both end a line.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// Lines returns the number of lines, counting a trailing empty line.
func (li *LineIndex) Lines() int {
	return len(li.starts)
}

// LineStart returns the byte offset of the 0-based line, or -1 when out of range.
func (li *LineIndex) LineStart(line int) int {
	if line < 0 || line >= len(li.starts) {
		return -1
	}
	return li.starts[line]
}

// Line returns the text of a 0-based line without its terminator.
func (li *LineIndex) Line(line int) string {
	start := li.LineStart(line)
	if start < 0 {
		return ""
	}
	end := len(li.src)
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1
	}
	if end > start && li.src[end-1] == '\r' {
		end--
	}
	return li.src[start:end]
}

// Position converts a byte offset to a 0-based line and 0-based UTF-16 column.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line = sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	start := li.starts[line]
	return line, ByteOffsetToUTF16(li.src[start:], offset-start)
}

// Offset converts a 0-based line and byte column to a byte offset, or -1 when out of range.
func (li *LineIndex) Offset(line, byteCol int) int {
	start := li.LineStart(line)
	if start < 0 || byteCol < 0 {
		return -1
	}
	off := start + byteCol
	if off > len(li.src) {
		return -1
	}
	return off
}
