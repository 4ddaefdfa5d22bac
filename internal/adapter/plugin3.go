package adapter

import "github.com/jpl-au/bridge/extension"

// plugin3 forwards the native surface unchanged to generation 3
// extensions. Generation 3 differs from native only in name.
type plugin3 struct {
	pluginBase
}

// NewPlugin3 returns the generation 3 plugin adapter.
func NewPlugin3(env Env) (Adapter, error) {
	a := &plugin3{pluginBase{newBase(env, Plugin(extension.Gen3), Theme(extension.Gen3))}}
	a.identity(extension.LifecycleEvents()...)
	return a, nil
}
