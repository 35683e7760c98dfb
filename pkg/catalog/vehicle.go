package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Category is the vehicle body class shown as a pill and used by the
// category filter.
type Category string

const (
	Carriers      Category = "carriers"
	LightDuty     Category = "light-duty"
	MediumDuty    Category = "medium-duty"
	HeavyDuty     Category = "heavy-duty"
	ServiceBodies Category = "service-bodies"
)

// Categories lists every category in display order.
var Categories = []Category{Carriers, LightDuty, MediumDuty, HeavyDuty, ServiceBodies}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label formats the category for display: "heavy-duty" becomes "Heavy Duty".
func (c Category) Label() string {
	words := strings.Split(string(c), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SoldDate carries the display label and the comparable date together. Sorting
// uses Date, display uses Label; both agree on month and year.
type SoldDate struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// Vehicle is one listing in the gallery.
type Vehicle struct {
	ID            int      `json:"id"`
	Image         string   `json:"image"`
	Gallery       []string `json:"gallery"`
	Owner         string   `json:"owner"`
	Description   string   `json:"description"`
	Sold          SoldDate `json:"sold"`
	SalesRep      string   `json:"sales_rep"`
	Category      Category `json:"category"`
	DisplayHeight int      `json:"display_height"`
}

// Year is the model year parsed from the description, falling back to the
// current year.
func (v Vehicle) Year() int { return ExtractYear(v.Description, time.Now()) }

// Location is the trailing token of the owner field (the state).
func (v Vehicle) Location() string { return Location(v.Owner) }

// Company is the leading token of the owner field.
func (v Vehicle) Company() string { return CompanyName(v.Owner) }

// Find returns the vehicle with the given id.
func Find(vehicles []Vehicle, id int) (Vehicle, bool) {
	for _, v := range vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// Marshal serializes a catalog to pretty-printed JSON.
func Marshal(vehicles []Vehicle) ([]byte, error) {
	return json.MarshalIndent(vehicles, "", "  ")
}

// Unmarshal parses a catalog and checks that every record is usable.
func Unmarshal(data []byte) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	for i, v := range vehicles {
		if v.ID <= 0 {
			return nil, fmt.Errorf("vehicle %d: missing id", i)
		}
		if !v.Category.Valid() {
			return nil, fmt.Errorf("vehicle %d: unknown category %q", v.ID, v.Category)
		}
		if len(v.Gallery) == 0 {
			vehicles[i].Gallery = []string{v.Image}
		}
	}
	return vehicles, nil
}

// ReadFile loads a catalog written by [WriteFile].
func ReadFile(path string) ([]Vehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// WriteFile writes a catalog as JSON.
func WriteFile(vehicles []Vehicle, path string) error {
	data, err := Marshal(vehicles)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
