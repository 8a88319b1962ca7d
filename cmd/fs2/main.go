// Command fs2 is the command-line front end to the fs2 file system
// emulator: every invocation with arguments loads a single disk image
// file, applies the requested operations, and dumps the image back to
// disk before exiting. Run with no arguments, it formats a fresh image and
// writes it in place of any existing one.
package main

import (
	"fmt"
	"os"

	"fs2/internal/diskfs"
	"fs2/internal/fslog"
)

// cliVersion is the CLI's own build identifier, logged once at startup.
// Override at build time with -ldflags "-X main.cliVersion=...".
var cliVersion = "v1.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	diskPath := defaultDiskPath()

	if len(args) == 0 {
		fs, err := diskfs.Init(diskfs.DefaultDiskSize)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if err := fs.Dump(diskPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	invocations, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fs, err := diskfs.Load(diskPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer fs.Free()

	exit := 0
	for _, inv := range invocations {
		if err := dispatch(fs, inv, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			exit = 1
			continue
		}
		if msg, had := fs.GetError(); had {
			fmt.Fprintln(stderr, msg)
			exit = 1
		}
	}

	if err := fs.Dump(diskPath); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	return exit
}

func dispatch(fs *diskfs.FS, inv invocation, stdout *os.File) error {
	switch inv.key {
	case 'c':
		f, err := fs.Open(inv.value, "w")
		if err != nil {
			return nil
		}
		return fs.Close(f)

	case 'r':
		f, err := fs.Open(inv.value, "r")
		if err != nil {
			return nil
		}
		data, err := fs.Read(f)
		if err != nil {
			return nil
		}
		fmt.Fprint(stdout, string(data))
		return fs.Close(f)

	case 'd':
		return fs.CreateDir(inv.value)

	case 'x':
		return fs.RemoveFile(inv.value)

	case 'z':
		return fs.RemoveDir(inv.value)

	case 'v':
		return fs.ChangeDir(inv.value)

	case 'l':
		if pwd, err := fs.Pwd(); err == nil {
			fmt.Fprintln(stdout, pwd)
		}
		target := inv.value
		if target == "" {
			target = "."
		}
		dirOffset, err := fs.OpenDir(target)
		if err != nil {
			return nil
		}
		self, parent, err := fs.SelfAndParent(dirOffset)
		if err != nil {
			return nil
		}
		fmt.Fprintf(stdout, "%-7d %d %7d %s\n", self, diskfs.TypeDir, 0, ".")
		fmt.Fprintf(stdout, "%-7d %d %7d %s\n", parent, diskfs.TypeDir, 0, "..")
		entries, err := fs.List(inv.value)
		if err != nil {
			return nil
		}
		printListing(stdout, entries)
		return nil

	case 'w':
		f, err := fs.Open(inv.value, "w")
		if err != nil {
			return nil
		}
		if inv.extra != "" {
			if err := fs.Write(f, []byte(inv.extra)); err != nil {
				// fall through to Close so the handle isn't left dangling
			}
		}
		return fs.Close(f)

	case 'a':
		f, err := fs.Open(inv.value, "a")
		if err != nil {
			return nil
		}
		if inv.extra != "" {
			if err := fs.Write(f, []byte(inv.extra)); err != nil {
				// fall through to Close so the handle isn't left dangling
			}
		}
		return fs.Close(f)

	case 'i':
		f, err := fs.Open(inv.value, "r")
		if err != nil {
			return nil
		}
		printFileInfo(stdout, fs.Inspect(f))
		return fs.Close(f)

	case 'o':
		printOptions(stdout)
		return nil

	case 'p':
		return setDataPath(inv.value)

	default:
		return fmt.Errorf("unhandled flag -%c", inv.key)
	}
}

func printOptions(stdout *os.File) {
	for _, opt := range options {
		fmt.Fprintf(stdout, "--%s -%c ", opt.long, opt.key)
	}
	fmt.Fprint(stdout, "--help -? \n")
}

func printListing(stdout *os.File, entries []diskfs.DirEntry) {
	for _, e := range entries {
		name := e.Name
		if e.Type == diskfs.TypeDir {
			name += "/"
		}
		fmt.Fprintf(stdout, "%-7d %d %7d %s\n", e.Offset, e.Type, e.Size, name)
	}
}

func printFileInfo(stdout *os.File, info diskfs.FileInfo) {
	fmt.Fprintf(stdout, "name: %s\n", info.Name)
	fmt.Fprintf(stdout, "type: %d\n", info.Type)
	fmt.Fprintf(stdout, "mode: %d\n", info.Mode)
	fmt.Fprintf(stdout, "first block: %d\n", info.FirstBlock)
	fmt.Fprintf(stdout, "header addr: %d\n", info.HeaderOffset)
}

func init() {
	fslog.SetVerbose(false)
	fslog.Logger.Debug().Str("version", cliVersion).Msg("fs2 starting")
}
