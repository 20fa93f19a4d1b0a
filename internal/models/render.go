package models

// Embed colors, sent vs received.
const (
	ColorSent     = 0x2196F3
	ColorReceived = 0xE1306C
)

// RenderableField is a labeled value attached to a rendered message,
// used for the resolved timestamp display.
type RenderableField struct {
	Name   string
	Value  string
	Inline bool
}

// RenderableMessage is the normalized, destination-ready form of one
// inbox item. It lives only for the duration of a single delivery.
type RenderableMessage struct {
	Title    string
	Body     string
	Color    int
	ImageURL string
	Footer   string
	Fields   []RenderableField
}

// AddField appends a labeled field to the rendering.
func (m *RenderableMessage) AddField(name, value string, inline bool) {
	m.Fields = append(m.Fields, RenderableField{Name: name, Value: value, Inline: inline})
}
