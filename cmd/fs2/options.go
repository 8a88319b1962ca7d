package main

// option describes one short flag in the bit-exact CLI surface. Go has
// no argp equivalent, so this table plus parseArgs below hand-roll just
// enough of argp's behavior to stay compatible: a single-character key,
// whether it takes a value, and whether a directly-following positional
// token (not itself a flag) is consumed as extra data.
type option struct {
	key      byte
	long     string
	hasValue bool
	help     string
}

var options = []option{
	{'c', "create", true, "Create new file"},
	{'r', "read", true, "Read file"},
	{'d', "create-dir", true, "Create new directory"},
	{'x', "remove", true, "Remove regular file"},
	{'z', "remove-dir", true, "Remove directory"},
	{'v', "change-dir", true, "Change directory"},
	{'l', "list", true, "List directory contents"},
	{'w', "write", true, "Write data to file"},
	{'a', "append", true, "Append data to file"},
	{'i', "info", true, "Print file info"},
	{'o', "options", false, "Get all options"},
	{'p', "path", true, "Specify data path"},
}

// invocation is one parsed flag plus its value and any trailing positional
// argument it consumed (the DATA operand of -w/-a, or an optional operand
// of -l).
type invocation struct {
	key   byte
	value string
	extra string
	has   bool
}

// parseArgs walks argv left to right. Each flag is either "-k" followed
// by a separate token ("-w file data") or "-kvalue" glued together,
// matching the short forms argp accepts. -l's operand is optional; -w and
// -a additionally consume one more positional token after their value as
// the data payload, mirroring main.c's use of argp_state's remaining
// arg_count/argv.
func parseArgs(argv []string) ([]invocation, error) {
	var out []invocation

	find := func(k byte) *option {
		for i := range options {
			if options[i].key == k {
				return &options[i]
			}
		}
		return nil
	}

	i := 0
	for i < len(argv) {
		tok := argv[i]
		if len(tok) < 2 || tok[0] != '-' {
			return nil, errInvalidArg(tok)
		}
		key := tok[1]
		opt := find(key)
		if opt == nil {
			return nil, errUnknownFlag(tok)
		}

		inv := invocation{key: key, has: true}
		i++

		if opt.hasValue {
			if len(tok) > 2 {
				inv.value = tok[2:]
			} else if key == 'l' {
				// optional operand: only consume it if present and not itself a flag
				if i < len(argv) && !isFlag(argv[i]) {
					inv.value = argv[i]
					i++
				}
			} else {
				if i >= len(argv) {
					return nil, errMissingValue(tok)
				}
				inv.value = argv[i]
				i++
			}
		}

		if key == 'w' || key == 'a' {
			if i < len(argv) && !isFlag(argv[i]) {
				inv.extra = argv[i]
				i++
			}
		}

		out = append(out, inv)
	}

	return out, nil
}

func isFlag(tok string) bool {
	return len(tok) >= 2 && tok[0] == '-'
}
