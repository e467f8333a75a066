package report

import (
	"fmt"
	"regexp"
	"strconv"
)

// Lights is the light model an experiment was run under.
type Lights string

const (
	LightsFull     Lights = "full"
	LightsExternal Lights = "external"
	LightsInternal Lights = "internal"
)

// lightsOrder is the presentation order of light models.
var lightsOrder = []Lights{LightsFull, LightsExternal, LightsInternal}

// Rank returns the position of l in presentation order, or len(order) for
// an unknown model so that it sorts last.
func (l Lights) Rank() int {
	for i, o := range lightsOrder {
		if o == l {
			return i
		}
	}
	return len(lightsOrder)
}

// Valid reports whether l is one of the known light models.
func (l Lights) Valid() bool {
	return l.Rank() < len(lightsOrder)
}

// ParseLights converts a string to a Lights value.
func ParseLights(s string) (Lights, error) {
	l := Lights(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown light model %q", s)
	}
	return l, nil
}

// Configuration identifies one experiment run.
type Configuration struct {
	Lights    Lights `json:"lights" yaml:"lights"`
	ClassL    bool   `json:"class_l" yaml:"class_l"`
	Colors    int    `json:"colors" yaml:"colors"`
	Scheduler string `json:"scheduler" yaml:"scheduler"`
}

// Report filenames: parout_[L_]<lights>_<colors>_<scheduler>[_rigid][_qss].txt
// The scheduler group is greedy, so _rigid and _qss suffixes stay in the
// scheduler name.
var reportFilenameRe = regexp.MustCompile(`^parout_(L_)?(external|internal|full)_(\d+)_([a-z0-9_-]+)(_rigid)?(_qss)?\.txt$`)

// Classify extracts the configuration encoded in a report filename.
// It returns false for names that do not follow the naming convention.
func Classify(name string) (Configuration, bool) {
	m := reportFilenameRe.FindStringSubmatch(name)
	if m == nil {
		return Configuration{}, false
	}
	colors, err := strconv.Atoi(m[3])
	if err != nil {
		return Configuration{}, false
	}
	return Configuration{
		Lights:    Lights(m[2]),
		ClassL:    m[1] == "L_",
		Colors:    colors,
		Scheduler: m[4],
	}, true
}

// Filename returns the canonical report filename for c.
func (c Configuration) Filename() string {
	prefix := "parout_"
	if c.ClassL {
		prefix += "L_"
	}
	return fmt.Sprintf("%s%s_%d_%s.txt", prefix, c.Lights, c.Colors, c.Scheduler)
}

func (c Configuration) String() string {
	l := ""
	if c.ClassL {
		l = "L"
	}
	return fmt.Sprintf("%s %d%s/%s", c.Lights, c.Colors, l, c.Scheduler)
}
