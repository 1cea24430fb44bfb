package display

// glyphAdvance is the fixed per-glyph advance width used for numeric
// fields, wide enough to fit every digit glyph in this font. decimalAdvance
// is narrower, since the decimal point occupies a fraction of a digit's
// width -- this is what lets a cursor underline land under the correct
// digit instead of drifting once a decimal point enters the string.
const (
	glyphAdvance   = 7
	decimalAdvance = 3
	glyphHeight    = 8
)

// Glyph is a fixed-size bitmap for one character, rows top-to-bottom, each
// row a 5-bit mask of set columns with bit 4 as the leftmost column and
// bit 0 as the rightmost.
type Glyph [glyphHeight]byte

// glyphs holds the minimal numeric character set: digits, a decimal point,
// and a minus sign. No letters or other punctuation have glyphs, so label
// text draws as blank space. Bitmaps are 5 columns wide within the 7px
// advance cell.
var glyphs = map[rune]Glyph{
	'0': {0x0E, 0x11, 0x13, 0x15, 0x19, 0x11, 0x0E, 0x00},
	'1': {0x04, 0x0C, 0x04, 0x04, 0x04, 0x04, 0x0E, 0x00},
	'2': {0x0E, 0x11, 0x01, 0x02, 0x04, 0x08, 0x1F, 0x00},
	'3': {0x1F, 0x02, 0x04, 0x02, 0x01, 0x11, 0x0E, 0x00},
	'4': {0x02, 0x06, 0x0A, 0x12, 0x1F, 0x02, 0x02, 0x00},
	'5': {0x1F, 0x10, 0x1E, 0x01, 0x01, 0x11, 0x0E, 0x00},
	'6': {0x06, 0x08, 0x10, 0x1E, 0x11, 0x11, 0x0E, 0x00},
	'7': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x08, 0x08, 0x00},
	'8': {0x0E, 0x11, 0x11, 0x0E, 0x11, 0x11, 0x0E, 0x00},
	'9': {0x0E, 0x11, 0x11, 0x0F, 0x01, 0x02, 0x0C, 0x00},
	'.': {0, 0, 0, 0, 0, 0x0C, 0x0C, 0},
	'-': {0, 0, 0, 0x1F, 0, 0, 0, 0},
}

// advanceFor returns the per-character advance used by DrawNumeric: the
// decimal point is narrower than a digit so the cursor stays aligned.
func advanceFor(r rune) int {
	if r == '.' {
		return decimalAdvance
	}
	return glyphAdvance
}

// Text draws s starting at (x, y) using advanceFor's per-character advance
// (narrower for '.'), ignoring characters with no glyph (drawn as blank
// space of the same advance).
func (c *Canvas) Text(x, y int, s string) {
	cursor := x
	for _, r := range s {
		c.drawGlyph(cursor, y, r)
		cursor += advanceFor(r)
	}
}

// TextBBox returns the bounding box (width, height) text(s) would occupy
// if drawn at (0,0), for centering/right-justifying callers.
func TextBBox(s string) (w, h int) {
	for _, r := range s {
		w += advanceFor(r)
	}
	return w, glyphHeight
}

// DigitCursorX returns the x-offset of the underline cursor beneath the
// digit at cursorPos within s (0-indexed, left to right, non-digit slots
// such as '.' still occupy a position per the spec's cursor numbering).
func DigitCursorX(s string, cursorPos int) int {
	x := 0
	for i, r := range s {
		if i == cursorPos {
			return x
		}
		x += advanceFor(r)
	}
	return x
}

func (c *Canvas) drawGlyph(x, y int, r rune) {
	g, ok := glyphs[r]
	if !ok {
		return
	}
	for row := 0; row < glyphHeight; row++ {
		bits := g[row]
		for col := 0; col < 5; col++ {
			if bits&(1<<uint(4-col)) != 0 {
				c.Set(x+col, y+row, true)
			}
		}
	}
}
