package kit

import "strings"

// ParseArgs splits a command line into positional arguments and flags:
//
//	--name value   name = "value"
//	--name=value   name = "value"
//	--name         name = true (when no value follows)
//	--no-name      name = false
//	-abc           a, b, c = true; the last letter takes a following value
//	--             everything after is positional
func ParseArgs(argv []string) ([]string, map[string]interface{}) {
	positional := []string{}
	flags := make(map[string]interface{})

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch {
		case arg == "--":
			positional = append(positional, argv[i+1:]...)
			return positional, flags

		case strings.HasPrefix(arg, "--"):
			name := arg[2:]
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				flags[name[:eq]] = name[eq+1:]
				continue
			}
			if strings.HasPrefix(name, "no-") {
				flags[name[3:]] = false
				continue
			}
			if i+1 < len(argv) && !isFlag(argv[i+1]) {
				flags[name] = argv[i+1]
				i++
				continue
			}
			flags[name] = true

		case isFlag(arg):
			letters := arg[1:]
			for _, r := range letters[:len(letters)-1] {
				flags[string(r)] = true
			}
			last := letters[len(letters)-1:]
			if i+1 < len(argv) && !isFlag(argv[i+1]) {
				flags[last] = argv[i+1]
				i++
				continue
			}
			flags[last] = true

		default:
			positional = append(positional, arg)
		}
	}
	return positional, flags
}

// isFlag reports whether arg starts a flag. A lone "-" is positional.
func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// UpdateArgs parses argv, queues its positional arguments ahead of those
// already queued, and adds its flags without overriding ones already set.
func (k *Kit) UpdateArgs(argv []string) {
	positional, flags := ParseArgs(argv)

	k.mu.Lock()
	k.args = append(positional, k.args...)
	k.mu.Unlock()

	k.Flags().Merge(flags)
}
