package adapter

import "github.com/jpl-au/bridge/extension"

// Defaults returns the built-in adapter factories.
func Defaults() map[ID]Factory {
	return map[ID]Factory{
		Plugin(extension.Gen3): NewPlugin3,
		Plugin(extension.Gen2): NewPlugin2,
		Plugin(extension.Gen1): NewPlugin1,
		Plugin(extension.Gen0): NewPlugin0,
		Theme(extension.Gen3):  NewTheme3,
		Theme(extension.Gen2):  NewTheme2,
		Theme(extension.Gen1):  NewTheme1,
		Theme(extension.Gen0):  NewTheme0,
	}
}

// RegisterDefaults installs the built-in factories into g.
func RegisterDefaults(g *Graph) {
	for id, f := range Defaults() {
		g.Register(id, f)
	}
}
