package templates

// LoadCatalog assembles the template catalog: user templates from the
// given directory first, then builtins. A user template with the same
// name as a builtin overrides it.
func LoadCatalog(userDir string) (*Catalog, error) {
	user, err := LoadTemplatesFromDir(userDir)
	if err != nil {
		return nil, err
	}

	builtins, err := LoadBuiltinTemplates()
	if err != nil {
		return nil, err
	}

	combined := make([]*Template, 0, len(user)+len(builtins))
	combined = append(combined, user...)
	combined = append(combined, builtins...)
	return NewCatalog(combined...), nil
}
