package main

import (
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"gopkg.in/ini.v1"
)

// awsProfiles lists the profile names found in the shared AWS config and
// credentials files.
func awsProfiles() []string {
	var names []string
	for _, path := range []string{config.DefaultSharedConfigFilename(), config.DefaultSharedCredentialsFilename()} {
		names = append(names, profileSections(path)...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// profileSections returns the profile sections of one shared file.
// A missing or unreadable file has none.
func profileSections(path string) []string {
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		return nil
	}
	var names []string
	for _, section := range f.SectionStrings() {
		if section == ini.DefaultSection {
			continue
		}
		name := strings.TrimSpace(section)
		if rest, ok := strings.CutPrefix(name, "profile "); ok {
			name = strings.TrimSpace(rest)
		}
		if name != "" && !strings.HasPrefix(name, "sso-session ") && !strings.HasPrefix(name, "services ") {
			names = append(names, name)
		}
	}
	return names
}
