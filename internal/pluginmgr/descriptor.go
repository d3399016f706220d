package pluginmgr

// Descriptor is the persisted record of a plugin's identity and desired
// state. Name is the unique key and is not stored in the YAML struct
// fields; it is carried alongside when a Descriptor needs to travel
// outside its owning map.
type Descriptor struct {
	Name   string `yaml:"-" json:"-"`
	Path   string `yaml:"path" json:"path"`
	Active bool   `yaml:"active" json:"active"`
}

// rosterFile is the on-disk shape of the plugin roster YAML:
//
//	plugins:
//	  <name>:
//	    path: <string>
//	    active: <bool>
type rosterFile struct {
	Plugins map[string]Descriptor `yaml:"plugins"`
}
