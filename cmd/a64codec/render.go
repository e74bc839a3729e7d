package main

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/xlab/treeprint"
	"golang.org/x/arch/arm64/arm64asm"

	"github.com/sarchlab/a64codec/insts"
)

// reference returns the GNU syntax of word as printed by the Go arm64
// disassembler, or "?" if it cannot decode the word.
func reference(word uint32) string {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)

	inst, err := arm64asm.Decode(buf[:])
	if err != nil {
		return "?"
	}
	return arm64asm.GNUSyntax(inst)
}

// instTree lays out the fields of a decoded instruction. position is used to
// resolve PC-relative targets.
func instTree(word uint32, inst insts.Instruction, position uint32) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%#08x %v (%v)", word, inst.Op(), inst.Family()))

	switch i := inst.(type) {
	case insts.DPI:
		tree.AddNode(fmt.Sprintf("sf: %v", i.Is64Bit))
		tree.AddNode(fmt.Sprintf("opc: %#b", i.Opc))
		tree.AddNode(fmt.Sprintf("rd: %v", reg(i.Rd, i.Is64Bit)))
		addForm(tree, i.Form)
	case insts.DPR:
		tree.AddNode(fmt.Sprintf("sf: %v", i.Is64Bit))
		tree.AddNode(fmt.Sprintf("opc: %#b", i.Opc))
		tree.AddNode(fmt.Sprintf("rd: %v", reg(i.Rd, i.Is64Bit)))
		tree.AddNode(fmt.Sprintf("rn: %v", reg(i.Rn, i.Is64Bit)))
		tree.AddNode(fmt.Sprintf("rm: %v", reg(i.Rm, i.Is64Bit)))
		addForm(tree, i.Form)
	case insts.SDT:
		tree.AddNode(fmt.Sprintf("size: %v", i.Size()))
		tree.AddNode(fmt.Sprintf("rt: %v", reg(i.Rt, i.Is64Bit)))
		form := addForm(tree, i.Form)
		if lit, ok := i.Form.(insts.LoadLiteral); ok {
			form.AddNode(fmt.Sprintf("target: %#x", lit.Target(position)))
		}
	case insts.Branch:
		form := addForm(tree, i.Form)
		switch f := i.Form.(type) {
		case insts.Unconditional:
			form.AddNode(fmt.Sprintf("target: %#x", f.Target(position)))
		case insts.Conditional:
			form.AddNode(fmt.Sprintf("target: %#x", f.Target(position)))
			form.AddNode(fmt.Sprintf("base: %v negated: %v", f.Cond.Base(), f.Cond.Negated()))
		}
	}

	return tree
}

var formFields = strings.NewReplacer("{", "", "}", "", "Addressed:", "")

// addForm adds a branch named after the sub-form with one node per field.
func addForm(tree treeprint.Tree, form any) treeprint.Tree {
	name := strings.TrimPrefix(fmt.Sprintf("%T", form), "insts.")
	branch := tree.AddBranch(name)

	fields := formFields.Replace(fmt.Sprintf("%+v", form))
	for _, field := range strings.Fields(fields) {
		branch.AddNode(field)
	}

	return branch
}

func reg(index uint8, is64 bool) string {
	prefix := "w"
	if is64 {
		prefix = "x"
	}
	if index == 31 {
		return prefix + "zr"
	}
	return prefix + strconv.Itoa(int(index))
}

// parseWord reads a word written in hex, with or without the 0x prefix.
func parseWord(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a 32-bit hex word", s)
	}
	return uint32(v), nil
}
