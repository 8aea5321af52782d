// Package flagx lets several flag sets share one command line. Each consumer
// picks out the flags it owns and parses only those, so the config loader can
// coexist with the CLI's own subcommands and flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments in args that belong to allowedFlags,
// together with their values. Both "-f value" and "-f=value" forms are kept
// verbatim. A single and double dash spelling of the same name match each
// other, and a bare "--" ends flag processing.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := allowed[flagName(name)]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func flagName(s string) string {
	return strings.TrimLeft(s, "-")
}

// Lookup returns the last value given to any of names in args, or "" when
// none of them is present.
func Lookup(args []string, names ...string) string {
	var value string

	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, flagName(n), "", "")
	}
	_ = fs.Parse(FilterArgs(args, names))

	return value
}

// JsonConfigFlags returns the config file path given via -c or -config on
// the process command line, or "" when neither is present.
func JsonConfigFlags() string {
	return Lookup(os.Args[1:], "-c", "-config")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
