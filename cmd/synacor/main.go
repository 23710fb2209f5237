// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ezrec/synacor/config"
	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/disasm"
	"github.com/ezrec/synacor/emulator"
	"github.com/ezrec/synacor/monitor"
)

func main() {
	var configFile string

	opts := &config.Config{}

	flag.StringVar(&opts.Binary, "b", "", "Binary to execute")
	flag.StringVar(&opts.State, "s", "", "Saved state to resume")
	flag.StringVar(&opts.Disassemble, "d", "", "Disassemble the binary to this file")
	flag.StringVar(&configFile, "c", "", "TOML configuration file")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := config.Default()
	if len(configFile) != 0 {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
	}
	cfg.Merge(opts)

	logger := zap.NewNop()
	if cfg.Verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
	}
	defer logger.Sync()

	if len(cfg.Disassemble) != 0 {
		err := disassemble(cfg.Binary, cfg.Disassemble)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	emu := emulator.NewEmulator()
	emu.SetLogger(logger)
	err := cfg.Apply(emu)
	if err != nil {
		log.Fatal(err)
	}

	emu.Tape.Output = os.Stdout
	mon := monitor.NewMonitor(emu, os.Stdin, os.Stdout)

	switch {
	case len(cfg.State) != 0:
		text, err := emu.LoadState(cfg.State)
		if err != nil {
			log.Fatalf("%v: %v", cfg.State, err)
		}
		fmt.Println(mon.Styles.Info.Render("Save state loaded"))
		for _, line := range strings.Split(text, "\n") {
			fmt.Println(mon.Styles.Text.Render(line))
		}
	case len(cfg.Binary) != 0:
		inf, err := os.Open(cfg.Binary)
		if err != nil {
			log.Fatalf("%v: %v", cfg.Binary, err)
		}
		err = emu.LoadProgram(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", cfg.Binary, err)
		}
	default:
		fmt.Println("No binary or state file provided. Use -help for more.")
		return
	}

	err = mon.Run()
	if err != nil {
		log.Fatal(mon.Styles.Error.Render(err.Error()))
	}
}

// disassemble writes the listing of a binary to a file.
func disassemble(binary string, listing string) (err error) {
	if len(binary) == 0 {
		err = fmt.Errorf("no binary file provided")
		return
	}

	fmt.Println("Disassembling...")

	data, err := os.ReadFile(binary)
	if err != nil {
		return
	}

	ouf, err := os.Create(listing)
	if err != nil {
		return
	}
	defer ouf.Close()

	err = disasm.Disassemble(ouf, cpu.BytesToWords(data))
	if err != nil {
		return
	}

	fmt.Println("Done.")

	return
}
