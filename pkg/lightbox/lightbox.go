// Package lightbox is the detail modal: one open vehicle and the index of
// the carousel image being shown.
package lightbox

import (
	"github.com/matzehuels/rigwall/pkg/catalog"
)

// Lightbox holds the modal state. The zero value is closed.
type Lightbox struct {
	open  bool
	rec   catalog.Vehicle
	index int
}

// Open shows v starting at its first image.
func (l *Lightbox) Open(v catalog.Vehicle) {
	l.open = true
	l.rec = v
	l.index = 0
}

// Close hides the modal.
func (l *Lightbox) Close() {
	*l = Lightbox{}
}

// IsOpen reports whether a record is shown.
func (l *Lightbox) IsOpen() bool { return l.open }

// Record returns the open vehicle.
func (l *Lightbox) Record() (catalog.Vehicle, bool) {
	return l.rec, l.open
}

// Index is the current carousel position.
func (l *Lightbox) Index() int { return l.index }

// Count is the number of carousel images of the open record.
func (l *Lightbox) Count() int {
	if !l.open {
		return 0
	}
	return len(l.rec.Gallery)
}

// Image returns the current carousel image.
func (l *Lightbox) Image() string {
	if !l.open || l.index >= len(l.rec.Gallery) {
		return ""
	}
	return l.rec.Gallery[l.index]
}

// Next moves one image forward. At the last image it does nothing.
func (l *Lightbox) Next() bool {
	if !l.open || l.index >= l.Count()-1 {
		return false
	}
	l.index++
	return true
}

// Prev moves one image back. At the first image it does nothing.
func (l *Lightbox) Prev() bool {
	if !l.open || l.index == 0 {
		return false
	}
	l.index--
	return true
}

// Select jumps to image i (a thumbnail click). Out-of-range indexes are
// ignored.
func (l *Lightbox) Select(i int) bool {
	if !l.open || i < 0 || i >= l.Count() {
		return false
	}
	l.index = i
	return true
}

// HandleKey applies a key binding and reports whether the state changed.
// Both DOM names ("ArrowLeft") and terminal names ("left") are accepted.
// Keys are ignored while the modal is closed.
func (l *Lightbox) HandleKey(key string) bool {
	if !l.open {
		return false
	}
	switch key {
	case "Escape", "esc":
		l.Close()
		return true
	case "ArrowLeft", "left":
		return l.Prev()
	case "ArrowRight", "right":
		return l.Next()
	}
	return false
}
