package colors

import (
	"fmt"
	"sort"
)

// Palettes is the named palette table. Build it once at startup with
// DefaultPalettes, merge configured palettes in, and pass it to whatever
// resolves palette names.
type Palettes struct {
	byName map[string]Palette16
}

var Rainbow = mustHex(
	"#FF0000", "#D52A00", "#AB5500", "#AB7F00", "#ABAB00", "#56D500", "#00FF00", "#00D52A",
	"#00AB55", "#0056AA", "#0000FF", "#2A00D5", "#5500AB", "#7F0081", "#AB0055", "#D5002B",
)

func DefaultPalettes() *Palettes {
	p := &Palettes{byName: map[string]Palette16{}}
	p.Set("rainbow", Rainbow)
	p.Set("multi", mustHex("#FF0000", "#FF7F00", "#FFFF00", "#00FF00", "#00FFFF", "#0000FF", "#8B00FF", "#FF00FF"))
	p.Set("red", mustHex("#200000", "#8B0000", "#FF0000", "#FF2020", "#8B0000"))
	p.Set("yellow", mustHex("#302000", "#B08000", "#FFD700", "#FFFF40", "#B08000"))
	p.Set("blue", mustHex("#000020", "#00008B", "#0000FF", "#4060FF", "#00008B"))
	p.Set("green", mustHex("#002000", "#006400", "#00FF00", "#40FF40", "#006400"))
	p.Set("orange", mustHex("#200800", "#8B3000", "#FF8C00", "#FFA040", "#8B3000"))
	p.Set("softwhite", mustHex("#FFE4B5", "#FFF0D0", "#FFDAB0", "#FFF8E8"))
	p.Set("ocean", mustHex(
		"#191970", "#00008B", "#191970", "#000080", "#00008B", "#0000CD", "#2E8B57", "#008080",
		"#5F9EA0", "#0000FF", "#008B8B", "#6495ED", "#7FFFD4", "#2E8B57", "#00FFFF", "#87CEFA",
	))
	p.Set("cloud", mustHex(
		"#0000FF", "#00008B", "#00008B", "#00008B", "#00008B", "#00008B", "#00008B", "#00008B",
		"#0000FF", "#00008B", "#87CEEB", "#87CEEB", "#ADD8E6", "#FFFFFF", "#ADD8E6", "#87CEEB",
	))
	p.Set("forest", mustHex(
		"#006400", "#006400", "#556B2F", "#006400", "#008000", "#228B22", "#6B8E23", "#008000",
		"#2E8B57", "#66CDAA", "#32CD32", "#9ACD32", "#90EE90", "#7CFC00", "#66CDAA", "#228B22",
	))
	p.Set("lava", mustHex(
		"#000000", "#800000", "#000000", "#800000", "#8B0000", "#8B0000", "#800000", "#8B0000",
		"#8B0000", "#8B0000", "#FF0000", "#FFA500", "#FFFFFF", "#FFA500", "#FF0000", "#8B0000",
	))
	p.Set("heat", mustHex(
		"#000000", "#330000", "#660000", "#990000", "#CC0000", "#FF0000", "#FF3300", "#FF6600",
		"#FF9900", "#FFCC00", "#FFFF00", "#FFFF33", "#FFFF66", "#FFFF99", "#FFFFCC", "#FFFFFF",
	))
	p.Set("party", mustHex(
		"#5500AB", "#84007C", "#B5004B", "#E5001B", "#E81700", "#B84700", "#AB7700", "#ABAB00",
		"#AB5500", "#DD2200", "#F2000E", "#C2003E", "#8F0071", "#5F00A1", "#2F00D0", "#0007F9",
	))
	return p
}

func (p *Palettes) Get(name string) (Palette16, bool) {
	pal, ok := p.byName[name]
	return pal, ok
}

func (p *Palettes) Set(name string, pal Palette16) {
	if p.byName == nil {
		p.byName = map[string]Palette16{}
	}
	p.byName[name] = pal
}

// AddHex registers a palette given as hex colors.
func (p *Palettes) AddHex(name string, hexes []string) error {
	pal, err := FromHex(hexes...)
	if err != nil {
		return fmt.Errorf("palette %q: %w", name, err)
	}
	p.Set(name, pal)
	return nil
}

func (p *Palettes) Names() []string {
	out := make([]string, 0, len(p.byName))
	for k := range p.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
