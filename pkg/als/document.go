package als

import (
	"fmt"

	"github.com/beevik/etree"
)

// Track element tags, in processing order.
const (
	KindAudio = "AudioTrack"
	KindMIDI  = "MidiTrack"
	KindGroup = "GroupTrack"
)

// Kinds lists the track kinds in processing order.
var Kinds = []string{KindAudio, KindMIDI, KindGroup}

const xmlDeclaration = `version="1.0" encoding="UTF-8"`

// Document is a parsed Live set. It is not safe for concurrent use.
type Document struct {
	doc *etree.Document
}

// Parse parses an uncompressed XML document.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	// Attribute newlines and tabs must stay character references.
	doc.WriteSettings.CanonicalAttrVal = true

	err := doc.ReadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse xml: %w", ErrDecode, err)
	}

	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrDecode)
	}

	return &Document{doc: doc}, nil
}

// Decode decompresses and parses an .als file.
func Decode(raw []byte) (*Document, error) {
	data, err := Decompress(raw)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Root returns the tag of the root element, normally "Ableton".
func (d *Document) Root() string {
	return d.doc.Root().Tag
}

// Attr returns an attribute of the root element, e.g. "Creator".
func (d *Document) Attr(key string) string {
	return d.doc.Root().SelectAttrValue(key, "")
}

// Tracks returns every track, grouped by kind in [Kinds] order and in
// document order within a kind.
func (d *Document) Tracks() []*Track {
	var tracks []*Track
	for _, kind := range Kinds {
		for _, el := range d.doc.FindElements("//" + kind) {
			tracks = append(tracks, &Track{el: el, kind: kind})
		}
	}

	return tracks
}

// XML serializes the document as UTF-8 with an XML declaration.
func (d *Document) XML() ([]byte, error) {
	d.ensureDeclaration()

	data, err := d.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize xml: %w", err)
	}

	return data, nil
}

// Encode serializes and compresses the document.
func (d *Document) Encode() ([]byte, error) {
	data, err := d.XML()
	if err != nil {
		return nil, err
	}

	return Compress(data)
}

func (d *Document) ensureDeclaration() {
	for i, tok := range d.doc.Child {
		pi, ok := tok.(*etree.ProcInst)
		if ok && pi.Target == "xml" {
			pi.Inst = xmlDeclaration
			if i == 0 {
				return
			}

			d.doc.RemoveChildAt(i)

			break
		}
	}

	d.doc.InsertChildAt(0, etree.NewProcInst("xml", xmlDeclaration))
}
