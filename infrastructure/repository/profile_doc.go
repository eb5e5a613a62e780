package repository

import (
	"time"

	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

// pointDocument is the stored form of a screen point.
type pointDocument struct {
	X int `bson:"x" yaml:"x"`
	Y int `bson:"y" yaml:"y"`
}

// regionDocument is the stored form of a screen region.
type regionDocument struct {
	Left   int `bson:"left" yaml:"left"`
	Top    int `bson:"top" yaml:"top"`
	Width  int `bson:"width" yaml:"width"`
	Height int `bson:"height" yaml:"height"`
}

// profileDocument is the document structure for calibration profiles, shared
// by the MongoDB and file backends.
type profileDocument struct {
	Name      string                    `bson:"name" yaml:"name"`
	Buttons   map[string]pointDocument  `bson:"buttons,omitempty" yaml:"buttons,omitempty"`
	Areas     map[string]regionDocument `bson:"areas,omitempty" yaml:"areas,omitempty"`
	DelayMs   int                       `bson:"delay_ms" yaml:"delay_ms"`
	UpdatedAt time.Time                 `bson:"updated_at" yaml:"updated_at"`
}

// documentToProfile converts a stored document to a domain Profile.
// Unknown roles and areas are kept so newer files survive a round trip.
func documentToProfile(doc *profileDocument) *calibration.Profile {
	p := calibration.NewProfile(doc.Name)
	p.DelayMs = doc.DelayMs
	p.UpdatedAt = doc.UpdatedAt

	for role, pt := range doc.Buttons {
		p.Buttons[calibration.Role(role)] = screen.Point{X: pt.X, Y: pt.Y}
	}
	for area, r := range doc.Areas {
		p.Areas[calibration.Area(area)] = screen.Region{
			Left:   r.Left,
			Top:    r.Top,
			Width:  r.Width,
			Height: r.Height,
		}
	}
	return p
}

// profileToDocument converts a domain Profile to its stored form.
func profileToDocument(p *calibration.Profile) *profileDocument {
	doc := &profileDocument{
		Name:      p.Name,
		DelayMs:   p.DelayMs,
		UpdatedAt: p.UpdatedAt,
	}

	if len(p.Buttons) > 0 {
		doc.Buttons = make(map[string]pointDocument, len(p.Buttons))
		for role, pt := range p.Buttons {
			doc.Buttons[string(role)] = pointDocument{X: pt.X, Y: pt.Y}
		}
	}
	if len(p.Areas) > 0 {
		doc.Areas = make(map[string]regionDocument, len(p.Areas))
		for area, r := range p.Areas {
			doc.Areas[string(area)] = regionDocument{
				Left:   r.Left,
				Top:    r.Top,
				Width:  r.Width,
				Height: r.Height,
			}
		}
	}
	return doc
}
