package lunar

import (
	"math"
	"time"
)

// Info describes the moon at a given instant, in the shape the site's home
// page consumes.
type Info struct {
	Phase        string `json:"phase"`
	Illumination int    `json:"illumination"` // percent, 0-100
	Distance     string `json:"distance,omitempty"`
	NextFullMoon *int   `json:"nextFullMoon"` // days
	ImageURL     string `json:"imageUrl"`
	Fallback     bool   `json:"fallback,omitempty"`
}

// moonImageURL is the undated moon render from the same provider; it works
// even when the scrape does not.
const moonImageURL = "https://www.lunopia.com/mod/moon.png?bg=transparent&fg=@ffffff&date=false&percent=true&phase=true&size=200"

// synodicDays is the mean length of a lunation.
const synodicDays = 29.530588

// referenceNewMoon is a known new moon used as the epoch for the closed-form
// calculation.
var referenceNewMoon = time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC)

// phaseNames in order across one lunation.
var phaseNames = []string{
	"Nouvelle Lune",
	"Premier Croissant",
	"Premier Quartier",
	"Gibbeuse Croissante",
	"Pleine Lune",
	"Gibbeuse Décroissante",
	"Dernier Quartier",
	"Dernier Croissant",
}

// phaseUpper are the exclusive upper bounds, in days into the cycle, for each
// entry of phaseNames. The last name covers the remainder of the cycle.
var phaseUpper = []float64{1.84, 5.53, 9.22, 12.91, 16.61, 20.3, 23.99}

// Compute returns the moon phase at t from the mean synodic cycle. Accuracy is
// about a day, which is enough for a studio home page.
func Compute(t time.Time) Info {
	age := math.Mod(t.Sub(referenceNewMoon).Hours()/24, synodicDays)
	if age < 0 {
		age += synodicDays
	}

	name := phaseNames[len(phaseNames)-1]
	for i, upper := range phaseUpper {
		if age < upper {
			name = phaseNames[i]
			break
		}
	}

	// Illumination follows the cosine of the phase angle: 0% at new moon,
	// 100% at full.
	illum := (1 - math.Cos(2*math.Pi*age/synodicDays)) / 2

	days := daysToFullMoon(age)
	return Info{
		Phase:        name,
		Illumination: int(math.Round(illum * 100)),
		NextFullMoon: &days,
		ImageURL:     moonImageURL,
		Fallback:     true,
	}
}

func daysToFullMoon(age float64) int {
	d := synodicDays/2 - age
	if d <= 0 {
		d += synodicDays
	}
	return int(math.Round(d))
}
