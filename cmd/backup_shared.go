package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/neurostudy/internal/usecase/backup"
)

// groupsFromConfig reads a record group filter and rejects groups no record
// belongs to.
func groupsFromConfig(key string) ([]string, error) {
	groups := normalizeGroups(viper.GetStringSlice(key))
	if err := validateGroups(groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// normalizeGroups lowercases and dedupes group names. A trailing ':' is
// accepted so key prefixes such as "stats:" work too.
func normalizeGroups(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), ":")
		if name == "" {
			continue
		}
		result = append(result, name)
	}
	result = lo.Uniq(result)
	if len(result) == 0 {
		return nil
	}
	return result
}

func validateGroups(groups []string) error {
	unknown := lo.Without(groups, backup.KnownGroups...)
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("unknown record group %s (known: %s)",
		strings.Join(unknown, ", "), strings.Join(backup.KnownGroups, ", "))
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
