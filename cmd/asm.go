package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/uxngo/internal/asm"
)

// asmCmd assembles a uxntal source file into a uxn ROM image
var asmCmd = &cobra.Command{
	Use:   "asm `input.tal` `output.rom`",
	Short: "assemble a uxntal program into a rom",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runAsm,
}

func runAsm(cmd *cobra.Command, args []string) {
	input := args[0]
	output := input
	if len(args) == 2 {
		output = args[1]
	} else if strings.HasSuffix(output, ".tal") {
		output = strings.TrimSuffix(output, ".tal") + ".rom"
	} else {
		output += ".rom"
	}

	rom, assembler, err := asm.Assemble(input)
	if err != nil {
		fmt.Printf("assembly error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(output, rom, 0o644); err != nil {
		fmt.Printf("error writing rom: %v\n", err)
		os.Exit(1)
	}

	symPath := output + ".sym"
	if err := assembler.WriteSym(symPath); err != nil {
		fmt.Printf("error writing symbol file: %v\n", err)
	}

	fmt.Printf("Assembled %s -> %s (%d bytes)\n", input, output, len(rom))
}
