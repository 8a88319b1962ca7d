package main

import "fmt"

func errInvalidArg(tok string) error {
	return fmt.Errorf("unexpected argument %q", tok)
}

func errUnknownFlag(tok string) error {
	return fmt.Errorf("unknown flag %q", tok)
}

func errMissingValue(tok string) error {
	return fmt.Errorf("flag %q requires a value", tok)
}
