package aggregate

import (
	"fmt"

	"github.com/lucasnoah/synthreport/internal/config"
	"github.com/lucasnoah/synthreport/internal/report"
)

// Order is the fixed scheduler enumeration and the set of schedulers
// excluded from every output.
type Order struct {
	Schedulers []string
	Skip       []string
}

// OrderFromConfig builds an Order from the report settings.
func OrderFromConfig(r config.Report) Order {
	return Order{Schedulers: r.Schedulers, Skip: r.SkipSchedulers}
}

func (o Order) skipped(sched string) bool {
	for _, s := range o.Skip {
		if s == sched {
			return true
		}
	}
	return false
}

// Allowed reports whether sched is enumerated and not excluded.
func (o Order) Allowed(sched string) bool {
	if o.skipped(sched) {
		return false
	}
	for _, s := range o.Schedulers {
		if s == sched {
			return true
		}
	}
	return false
}

// Columns returns the enumeration order filtered to allowed schedulers that
// appear in observed.
func (o Order) Columns(observed map[string]bool) []string {
	var cols []string
	for _, s := range o.Schedulers {
		if observed[s] && !o.skipped(s) {
			cols = append(cols, s)
		}
	}
	return cols
}

// Key groups the reports of one configuration across schedulers.
type Key struct {
	Lights report.Lights `json:"lights"`
	ClassL bool          `json:"class_l"`
	Colors int           `json:"colors"`
}

// KeyOf drops the scheduler from c.
func KeyOf(c report.Configuration) Key {
	return Key{Lights: c.Lights, ClassL: c.ClassL, Colors: c.Colors}
}

// Less orders keys by light model, then class L first, then colors.
func (k Key) Less(o Key) bool {
	if k.Lights.Rank() != o.Lights.Rank() {
		return k.Lights.Rank() < o.Lights.Rank()
	}
	if k.ClassL != o.ClassL {
		return k.ClassL
	}
	return k.Colors < o.Colors
}

// ClassLMark is "L" for class L keys and a blank otherwise.
func (k Key) ClassLMark() string {
	if k.ClassL {
		return "L"
	}
	return " "
}

func (k Key) String() string {
	return fmt.Sprintf("%s %d %s", k.Lights, k.Colors, k.ClassLMark())
}
