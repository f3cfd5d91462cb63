package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/term"

	"github.com/cpulm/cpulm/cpu"
	"github.com/cpulm/cpulm/emulator"
	dev "github.com/cpulm/cpulm/io"
	"github.com/cpulm/cpulm/monitor"
	"github.com/cpulm/cpulm/translate"
)

var (
	_codeExt   = []string{".rom", ".code", ".po"}
	_ramExt    = []string{".ram", ".data", ".do"}
	_sourceExt = []string{".s", ".asm"}
)

func hasExt(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// readImage loads a raw word image.
func readImage(path string) (words []uint32) {
	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	defer inf.Close()

	rom := &dev.Rom{}
	err = rom.Unmarshal(inf)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	return rom.Data
}

type console struct {
	io.Reader
	io.Writer
}

func main() {
	var code string
	var ram string
	var compile string
	var output string
	var execute bool
	var verbose bool
	var lang string

	flag.StringVar(&code, "rom", "", "code image to load")
	flag.StringVar(&ram, "ram", "", "RAM image to load")
	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&output, "o", "", "save the assembled code image, do not execute")
	flag.BoolVar(&execute, "x", false, "execute to completion, without the monitor")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "message language, overriding the host locale")

	flag.Parse()

	if len(lang) != 0 {
		translate.Use(lang)
	}

	for _, arg := range flag.Args() {
		switch {
		case hasExt(arg, _codeExt):
			code = arg
		case hasExt(arg, _ramExt):
			ram = arg
		case hasExt(arg, _sourceExt):
			compile = arg
		default:
			log.Fatalf("%v: %v: unknown file type", os.Args[0], arg)
		}
	}

	if len(code) != 0 && len(compile) != 0 {
		log.Fatalf("%v: both a code image and a source file given", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	prog := &cpu.Program{}

	if len(code) != 0 {
		prog = cpu.NewProgram(readImage(code))
	}

	// Assemble a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		prog, err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()

		rom := &dev.Rom{Data: prog.Binary()}
		err = rom.Marshal(ouf)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	var image []uint32
	if len(ram) != 0 {
		image = readImage(ram)
	}

	emu.Load(prog, image)

	if execute {
		emu.Tape.Output = os.Stdout
		for !emu.Cpu.Halted() {
			err := emu.Run()
			if err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	err := runMonitor(emu)
	if err != nil {
		log.Fatal(err)
	}
}

// runMonitor drives the monitor on the controlling terminal.
func runMonitor(emu *emulator.Emulator) (err error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer term.Restore(fd, state)
	}

	mon := monitor.NewMonitor(emu, nil)
	return mon.Run(&console{Reader: os.Stdin, Writer: os.Stdout})
}
