package catalog

import (
	"fmt"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
)

// DefaultGallerySize is the number of carousel entries generated per record.
const DefaultGallerySize = 4

// DefaultImagePrefix is the relative directory image names are resolved under.
const DefaultImagePrefix = "images"

// Roster is the static input the generator draws from.
type Roster struct {
	Images    []string `toml:"images" json:"images"`
	Companies []string `toml:"companies" json:"companies"`
	SalesReps []string `toml:"sales_reps" json:"sales_reps"`

	// ImagePrefix is joined in front of every image name ("images/x.jpg").
	ImagePrefix string `toml:"image_prefix" json:"image_prefix"`

	// GallerySize is the number of carousel images per record. Until real
	// multi-image listings exist each entry repeats the primary image.
	GallerySize int `toml:"gallery_size" json:"gallery_size"`
}

// Validate checks the roster has something to draw from and that every image
// name is a bare file name.
func (r Roster) Validate() error {
	if len(r.Companies) == 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "roster has no companies")
	}
	if len(r.SalesReps) == 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "roster has no sales reps")
	}
	for _, img := range r.Images {
		if err := rwerrors.ValidateImageName(img); err != nil {
			return fmt.Errorf("roster: %w", err)
		}
	}
	return nil
}

// WithDefaults fills empty roster fields from [DefaultRoster].
func (r Roster) WithDefaults() Roster {
	d := DefaultRoster()
	if len(r.Images) == 0 {
		r.Images = d.Images
	}
	if len(r.Companies) == 0 {
		r.Companies = d.Companies
	}
	if len(r.SalesReps) == 0 {
		r.SalesReps = d.SalesReps
	}
	if r.ImagePrefix == "" {
		r.ImagePrefix = d.ImagePrefix
	}
	if r.GallerySize <= 0 {
		r.GallerySize = d.GallerySize
	}
	return r
}

// DefaultRoster returns the built-in listing photos, owners and sales team.
func DefaultRoster() Roster {
	return Roster{
		Images:      append([]string(nil), defaultImages...),
		Companies:   append([]string(nil), defaultCompanies...),
		SalesReps:   append([]string(nil), defaultSalesReps...),
		ImagePrefix: DefaultImagePrefix,
		GallerySize: DefaultGallerySize,
	}
}

var defaultImages = []string{
	"21267-1-century-1075s-3-stage-heavy-duty-rotator-2024-kenworth-t-880.jpg",
	"21918-0-century-12-series-steel-lcg-car-carrier-2025-freightliner-m-2.jpg",
	"22519-1-century-10-series-steel-car-carrier-2023-chevrolet-6500.jpg",
	"19782-1-century-12-series-steel-lcg-car-carrier-2024-hino-lx-6.jpg",
	"20505-1-chevron-408vt-renegade-wrecker-2024-ram-5500.jpg",
	"22200-1-century-1150s-heavy-duty-rotator-2025-peterbilt-389.jpg",
	"20737-1-century-12-series-steel-lcg-car-carrier-2024-kenworth-t-280.jpg",
	"20744-1-century-12-series-steel-car-carrier-2024-kenworth-t-280.jpg",
	"20743-1-century-12-series-steel-lcg-car-carrier-2024-kenworth-t-280.jpg",
	"22494-1-century-2465-light-duty-wrecker-2024-ford-f-600.jpg",
	"21848-1-century-1150-heavy-duty-rotator-2025-peterbilt-567s.jpg",
	"21752-1-century-16-series-steel-lcg-car-carrier-2025-international-mv.jpg",
	"22067-1-century-12-series-aluminum-lcg-car-carrier-2025-international-mv-x.jpg",
	"22076-1-century-20-series-aluminum-4-car-carrier-2025-international-mv.jpg",
	"21772-1-century-16-series-steel-lcg-car-carrier-2025-ford-f-750.jpg",
	"20027-1-century-12-series-steel-lcg-car-carrier-2025-freightliner-m2.jpg",
	"19740-1-century-steel-12-series-lcg-car-carrier-2025-international-mv-x.jpg",
	"22058-1-century-12-series-steel-lcg-car-carrier-2025-international-mv-x.jpg",
	"20875-1-century-12-series-aluminum-lcg-car-carrier-2025-kenworth-t-280.jpg",
	"21250-1-century-4024-20-ton-wrecker-2024-peterbilt-537.jpg",
	"22072-1-century-12-series-steel-lcg-car-carrier-2025-international-mv.jpg",
	"21506-1-vulcan-810cw-ptsl-4-ton-light-duty-wrecker-2024-dodge-ram-4500hd.jpg",
	"21285-17-century-12-series-steel-car-carrier-2025-freightliner-m2.jpg",
	"21886-1-century-12-series-steel-car-carrier-2025-international-mv-x.jpg",
	"22179-1-century-12-series-steel-lcg-car-carrier-2025-freightliner-m2-x.jpg",
	"22314-1-century-12-series-steel-lcg-car-carrier-2025-freightliner-m2-x.jpg",
	"22315-1-century-12-series-lcg-car-carrier-2025-freightliner-m2-x.jpg",
	"22358-1-century-1150-heavy-duty-rotator-2018-peterbilt-389ec.jpg",
	"19760-1-century-steel-12-series-lcg-car-carrier-2024-hino-l6.jpg",
}

var defaultCompanies = []string{
	"Phantom Towing LLC, Hayward, CA",
	"Elite Recovery Services, Phoenix, AZ",
	"Metro Towing Group, Dallas, TX",
	"Mountain View Auto Transport, Denver, CO",
	"Coastal Carriers Inc, Miami, FL",
	"Northern Lights Towing, Seattle, WA",
	"Desert Eagle Transport, Las Vegas, NV",
	"Atlantic Recovery, Boston, MA",
	"Midwest Heavy Haul, Chicago, IL",
	"Pacific Coast Towing, San Diego, CA",
	"Thunder Road Recovery, Nashville, TN",
	"Steel City Towing, Pittsburgh, PA",
	"Lone Star Carriers, Houston, TX",
	"Golden Gate Towing, San Francisco, CA",
	"Liberty Recovery Services, Philadelphia, PA",
	"Motor City Towing, Detroit, MI",
	"Sunshine State Transport, Orlando, FL",
	"Rocky Mountain Recovery, Salt Lake City, UT",
	"Bayou Towing Co, New Orleans, LA",
	"Empire State Carriers, New York, NY",
}

var defaultSalesReps = []string{
	"Cole Schmitt", "Sarah Johnson", "Mike Rodriguez", "Lisa Chen", "David Thompson",
	"Amanda Williams", "Chris Martinez", "Jennifer Davis", "Robert Wilson", "Maria Garcia",
	"Kevin Brown", "Jessica Taylor", "Mark Anderson", "Ashley Miller", "Brian Jones",
}

var truckTypes = []string{
	"Century 12 Series Steel Car Carrier",
	"Century 16 Series Steel LCG Car Carrier",
	"Century 1150 Heavy Duty Rotator",
	"Century 2465 Light Duty Wrecker",
	"Century 4024 20-Ton Wrecker",
	"Vulcan 810CW PTSL 4-Ton Light Duty Wrecker",
	"Chevron 408VT Renegade Wrecker",
}

var chassis = []string{
	"Hino L-6", "Freightliner M-2", "Kenworth T-280", "Peterbilt 389",
	"International MV", "Ford F-750", "Chevrolet 6500", "Ram 5500",
	"Peterbilt 537", "Dodge Ram 4500HD",
}
