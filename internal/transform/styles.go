package transform

import (
	"sort"
	"strings"
)

// DefaultStyle is used for unknown style names.
const DefaultStyle = "default"

var styles = map[string]string{
	"social":  "FontSize=22,FontName=Arial,PrimaryColour=&H00FFFFFF,OutlineColour=&H003F85FF,BackColour=&H00000000,BorderStyle=1,Outline=2.2,Shadow=0.8,MarginV=30,Bold=1",
	"caption": "FontSize=24,FontName=Helvetica,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BackColour=&H00000000,BorderStyle=1,Outline=1.8,Shadow=1.2,MarginV=25,Alignment=2",
	"simple":  "FontSize=20,FontName=Roboto,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BackColour=&H00000000,BorderStyle=1,Outline=1.5,Shadow=0.6,MarginV=20",
	"modern":  "FontSize=22,FontName=Montserrat,PrimaryColour=&H00FFFFFF,OutlineColour=&H002C5FFE,BackColour=&H00000000,BorderStyle=1,Outline=1.7,Shadow=0.7,MarginV=22,Alignment=2,Bold=0",
	"elegant": "FontSize=21,FontName=Georgia,PrimaryColour=&H00FAFAFA,OutlineColour=&H00202020,BackColour=&H00000000,BorderStyle=1,Outline=1.3,Shadow=0.9,MarginV=22,Alignment=2,Italic=1",
	"default": "FontSize=20,FontName=Arial,PrimaryColour=&H00FFFFFF,OutlineColour=&H00303030,BackColour=&H00000000,BorderStyle=1,Outline=1.5,Shadow=0.7,MarginV=20",
}

// ResolveStyle returns the canonical style name and its force_style value.
// Unknown names resolve to DefaultStyle.
func ResolveStyle(name string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if value, ok := styles[key]; ok {
		return key, value
	}
	return DefaultStyle, styles[DefaultStyle]
}

// StyleNames lists the known styles in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
