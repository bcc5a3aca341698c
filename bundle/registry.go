package bundle

import (
	"github.com/fuselage-sh/fuselage/resource"
)

// constructors maps a serialised resource type name to the function that
// rebuilds it from its decoded field map, the registry a metaclass-driven
// system would populate from each class's `register()` call (spec §9).
var constructors = map[string]func(map[string]any) (resource.Resource, error){
	"File": func(raw map[string]any) (resource.Resource, error) { return resource.NewFile(raw) },
	"Directory": func(raw map[string]any) (resource.Resource, error) {
		return resource.NewDirectory(raw)
	},
	"Symlink": func(raw map[string]any) (resource.Resource, error) {
		return resource.NewSymlink(raw)
	},
	"LineInFile": func(raw map[string]any) (resource.Resource, error) {
		return resource.NewLineInFile(raw)
	},
	"Patch":   func(raw map[string]any) (resource.Resource, error) { return resource.NewPatch(raw) },
	"Execute": func(raw map[string]any) (resource.Resource, error) { return resource.NewExecute(raw) },
	"User":    func(raw map[string]any) (resource.Resource, error) { return resource.NewUser(raw) },
	"Group":   func(raw map[string]any) (resource.Resource, error) { return resource.NewGroup(raw) },
	"Package": func(raw map[string]any) (resource.Resource, error) { return resource.NewPackage(raw) },
	"Service": func(raw map[string]any) (resource.Resource, error) { return resource.NewService(raw) },
	"Mount":   func(raw map[string]any) (resource.Resource, error) { return resource.NewMount(raw) },
	"Scm":     func(raw map[string]any) (resource.Resource, error) { return resource.NewScm(raw) },
}
