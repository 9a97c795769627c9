package scenario

import "embed"

//go:embed testdata/*.yaml
var builtinFS embed.FS

// Builtin returns the embedded YAML for one of the canonical scenarios by
// short name ("s1".."s6"), for callers (the CLI) that want a bundled
// fixture without reading a file off disk.
func Builtin(name string) ([]byte, bool) {
	data, err := builtinFS.ReadFile("testdata/" + name + ".yaml")
	if err != nil {
		return nil, false
	}
	return data, true
}
