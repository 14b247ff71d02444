// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command heapprobe is a thin CLI over the reader package: attach to a
// running game, then answer one field-path query or list its loaded
// assemblies/types/fields.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	reader "github.com/mtgatool/mtga-reader-sub000"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

var (
	flagPID         int
	flagRuntime     string
	flagVersion     string
	flagModuleBase  string
	flagDataSegment string
)

func main() {
	root := &cobra.Command{
		Use:   "heapprobe",
		Short: "Inspect a running game's managed heap over a field path",
	}
	root.PersistentFlags().IntVar(&flagPID, "pid", 0, "target process id")
	root.PersistentFlags().StringVar(&flagRuntime, "runtime", "mono", "embedded runtime: mono, il2cpp, or auto (module-name probe, Windows only)")
	root.PersistentFlags().StringVar(&flagVersion, "version", "", "coarse runtime version tag, e.g. 2021.3; auto to sniff from the target's file version (Windows only)")
	root.PersistentFlags().StringVar(&flagModuleBase, "module-base", "0x0", "hex base address of the runtime module (M-RT)")
	root.PersistentFlags().StringVar(&flagDataSegment, "data-segment", "0x0", "hex base address of the writable data segment (A-RT)")

	root.AddCommand(pathCmd(), assembliesCmd(), typesCmd(), fieldsCmd(), classCmd(), genericInstanceCmd(), dictionaryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <dotted-path>",
		Short: "Evaluate a root.field.subfield... path and print JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()

			rootType, rootField, steps := reader.SplitPath(args[0])
			out, err := p.ReadPath(rootType, rootField, steps)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func assembliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemblies",
		Short: "List every indexed assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			return printJSON(p.ListAssemblies())
		},
	}
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types <assembly>",
		Short: "List every TypeDef address discovered under an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			return printJSON(p.ListTypes(args[0]))
		},
	}
}

func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <assembly> <type-name>",
		Short: "List every field declared on a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			fields, err := p.TypeFields(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(fields)
		},
	}
}

func classCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-class <hex-address>",
		Short: "Decode the object at an address one level deep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			addr, err := parseHexAddress(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			out, err := p.ReadClass(addr)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func genericInstanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-generic-instance <hex-address>",
		Short: "Decode the generic-instance object at an address one level deep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			addr, err := parseHexAddress(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			out, err := p.ReadGenericInstance(addr)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func dictionaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-dictionary <hex-address>",
		Short: "Decode the Dictionary<K,V> instance at an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProcess()
			if err != nil {
				return err
			}
			defer p.Close()
			addr, err := parseHexAddress(args[0])
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			out, err := p.ReadDictionary(addr)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func openProcess() (*reader.Process, error) {
	var kind offsets.Runtime
	var detectedBase rawreader.Address
	switch flagRuntime {
	case "mono":
		kind = offsets.MRT
	case "il2cpp":
		kind = offsets.ART
	case "auto":
		detectedKind, base, err := reader.DetectRuntime(flagPID)
		if err != nil {
			return nil, fmt.Errorf("--runtime auto: %w", err)
		}
		kind, detectedBase = detectedKind, base
	default:
		return nil, fmt.Errorf("unknown --runtime %q (want mono, il2cpp, or auto)", flagRuntime)
	}

	version := flagVersion
	if version == "auto" {
		sniffed, ok := reader.SniffVersion(flagPID, kind)
		if !ok {
			return nil, fmt.Errorf("--version auto: could not sniff engine version, pass --version explicitly")
		}
		version = sniffed
	}

	moduleBase, err := parseHexAddress(flagModuleBase)
	if err != nil {
		return nil, fmt.Errorf("--module-base: %w", err)
	}
	if moduleBase == 0 && kind == offsets.MRT {
		moduleBase = detectedBase
	}
	dataSeg, err := parseHexAddress(flagDataSegment)
	if err != nil {
		return nil, fmt.Errorf("--data-segment: %w", err)
	}

	return reader.New(flagPID, reader.Options{
		Runtime:     kind,
		Version:     version,
		ModuleBase:  moduleBase,
		DataSegment: dataSeg,
	})
}

func parseHexAddress(s string) (rawreader.Address, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return rawreader.Address(v), nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
