package idm

// Backend span-flag bitmask bits.
const (
	FontFlagSuperscript = 1 << 0
	FontFlagItalic      = 1 << 1
	FontFlagSerif       = 1 << 2
	FontFlagMonospace   = 1 << 3
	FontFlagBold        = 1 << 4
)

// FontDescriptor carries the typography of a text run. Style booleans are
// decoded from the backend flag bitmask at extraction time.
type FontDescriptor struct {
	Name      string
	Size      float64
	Color     Color
	Ascender  float64
	Descender float64

	Superscript bool
	Italic      bool
	Serif       bool
	Monospace   bool
	Bold        bool
}

// DecodeFontFlags expands a backend flag bitmask into the style booleans.
func (f *FontDescriptor) DecodeFontFlags(mask uint32) {
	f.Superscript = mask&FontFlagSuperscript != 0
	f.Italic = mask&FontFlagItalic != 0
	f.Serif = mask&FontFlagSerif != 0
	f.Monospace = mask&FontFlagMonospace != 0
	f.Bold = mask&FontFlagBold != 0
}

// Flags re-encodes the style booleans into the backend bitmask form.
func (f FontDescriptor) Flags() uint32 {
	var mask uint32
	if f.Superscript {
		mask |= FontFlagSuperscript
	}
	if f.Italic {
		mask |= FontFlagItalic
	}
	if f.Serif {
		mask |= FontFlagSerif
	}
	if f.Monospace {
		mask |= FontFlagMonospace
	}
	if f.Bold {
		mask |= FontFlagBold
	}
	return mask
}
