package models

const FormatPNG = "png"

// PageImage is one rendered page of an uploaded document. Index is 1-based
// and follows document order.
type PageImage struct {
	Index  int
	Data   []byte
	Format string
}

func (p PageImage) MIMEType() string {
	if p.Format == "" || p.Format == FormatPNG {
		return "image/png"
	}
	return "image/" + p.Format
}
