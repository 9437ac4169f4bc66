// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// reporta passively monitors a Cortex-M target's memory over SWD through
// an FTDI MPSSE USB bridge, printing each polled variable's value as it
// changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"

	"github.com/jbentham/reporta/dap"
	"github.com/jbentham/reporta/ftdi"
	"github.com/jbentham/reporta/monitor"
	"github.com/jbentham/reporta/swd"
)

func parseVars(spec string) ([]monitor.PollVar, error) {
	var vars []monitor.PollVar
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameAddr := strings.SplitN(part, "=", 2)
		if len(nameAddr) != 2 {
			return nil, fmt.Errorf("reporta: bad -vars entry %q, want name=0xADDR", part)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(nameAddr[1]), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("reporta: bad address in %q: %w", part, err)
		}
		vars = append(vars, monitor.PollVar{Name: strings.TrimSpace(nameAddr[0]), Addr: uint32(addr)})
	}
	return vars, nil
}

func mainImpl() error {
	device := flag.Int("device", 0, "FTDI device index")
	clockHz := flag.Int64("clock", 1000000, "SWCLK frequency in Hz")
	varSpec := flag.String("vars", "", "variables to poll, as name=0xADDR[,name=0xADDR...]")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	vars, err := parseVars(*varSpec)
	if err != nil {
		return err
	}

	tr, err := ftdi.Open(*device)
	if err != nil {
		return fmt.Errorf("reporta: opening FTDI device %d: %w", *device, err)
	}
	defer tr.Close()

	actual, err := tr.SetClock(physic.Frequency(*clockHz) * physic.Hertz)
	if err != nil {
		return fmt.Errorf("reporta: setting SWCLK: %w", err)
	}
	fmt.Printf("SWCLK: %s\n", actual)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	link := swd.NewLink(tr)
	if err := link.Reset(ctx); err != nil {
		return fmt.Errorf("reporta: SWD reset: %w", err)
	}

	session := dap.NewSession(link)
	idcode, err := session.Start(ctx)
	if err != nil {
		return fmt.Errorf("reporta: DP start: %w", err)
	}
	fmt.Printf("DP ident: %08X\n", idcode)

	apIdent, err := session.APIdent(ctx)
	if err != nil {
		return fmt.Errorf("reporta: AP ident: %w", err)
	}
	fmt.Printf("AP ident: %s\n", apIdent)

	if err := session.Config(ctx, dap.CswSize32, false); err != nil {
		return fmt.Errorf("reporta: AP config: %w", err)
	}

	if len(vars) == 0 {
		fmt.Println("No -vars given, nothing to poll")
		return nil
	}

	engine := monitor.NewEngine(session, vars)
	engine.Sink = monitor.ChangeSinkFunc(func(s monitor.Sample) {
		fmt.Println(s)
	})
	engine.Log = monitor.LogSinkFunc(log.Printf)

	fmt.Println("Polling, press Ctrl-C to stop")
	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reporta: polling: %w", err)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "reporta: %s.\n", err)
		os.Exit(1)
	}
}
