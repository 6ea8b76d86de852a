package campaign

// LoadAll returns the user's campaigns from the given directory plus
// the builtins. A user campaign with the same name as a builtin
// overrides it.
func LoadAll(userDir string) ([]*Campaign, error) {
	user, err := LoadCampaignsFromDir(userDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(user))
	resolved := make([]*Campaign, 0, len(user))
	for _, c := range user {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		resolved = append(resolved, c)
	}

	builtins, err := LoadBuiltinCampaigns()
	if err != nil {
		return nil, err
	}
	for _, c := range builtins {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		resolved = append(resolved, c)
	}

	return resolved, nil
}

// Find loads a campaign by name, searching the user directory before
// the builtins.
func Find(userDir, name string) (*Campaign, error) {
	campaigns, err := LoadAll(userDir)
	if err != nil {
		return nil, err
	}
	for _, c := range campaigns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, ErrCampaignNotFound
}
