// Package flagx contains helpers for components that each parse their own
// subset of the command line without tripping over one another's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -e .env
//  2. Flag and value combined with '=':      --env=.env
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" form: keep the whole argument when allowed.
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// Separate-value form: keep the flag, and the value if one follows.
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// EnvFileFlag inspects the command line and extracts the .env file path given
// via -e or -env. Other arguments are ignored so callers can parse their own
// flags afterwards. Returns "" when neither flag is present.
func EnvFileFlag() string {
	var envFile string

	args := FilterArgs(os.Args[1:], []string{"-e", "-env", "--env"})

	fs := flag.NewFlagSet("env", flag.ContinueOnError)
	fs.StringVar(&envFile, "env", "", "Path to .env file")
	fs.StringVar(&envFile, "e", "", "Path to .env file (short)")
	_ = fs.Parse(args)

	return envFile
}
