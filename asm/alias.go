package asm

// Insertion says where an alias puts its zero register.
type Insertion uint8

// Insertion positions.
const (
	InsertFirst Insertion = iota
	InsertSecond
	InsertLast
)

// Alias maps a pseudo-instruction to its canonical form.
type Alias struct {
	Pseudo    string
	Canonical string
	Insert    Insertion
}

var aliasTable = [...]Alias{
	{"cmp", "subs", InsertFirst},
	{"cmn", "adds", InsertFirst},
	{"tst", "ands", InsertFirst},
	{"neg", "sub", InsertSecond},
	{"negs", "subs", InsertSecond},
	{"mvn", "orn", InsertSecond},
	{"mov", "orr", InsertSecond},
	{"mul", "madd", InsertLast},
	{"mneg", "msub", InsertLast},
}

var aliases = func() map[string]Alias {
	m := make(map[string]Alias, len(aliasTable))
	for _, a := range aliasTable {
		m[a.Pseudo] = a
	}
	return m
}()

// Aliases returns a copy of the alias table in table order.
func Aliases() []Alias {
	return append([]Alias(nil), aliasTable[:]...)
}

// LookupAlias returns the alias entry for a pseudo-mnemonic.
func LookupAlias(mnemonic string) (Alias, bool) {
	a, ok := aliases[mnemonic]
	return a, ok
}

// Expand returns a new operand list with a zero register, sized after the
// first operand, inserted at the alias position. ops is not modified.
func (a Alias) Expand(ops []string) ([]string, error) {
	if len(ops) == 0 {
		return nil, operandError(ErrMalformedOperand, "%v needs operands", a.Pseudo)
	}

	first, err := parseRegister(ops[0])
	if err != nil {
		return nil, err
	}

	at := 0
	switch a.Insert {
	case InsertSecond:
		at = 1
	case InsertLast:
		at = len(ops)
	}

	return insertOperand(ops, at, first.zero()), nil
}

func insertOperand(ops []string, at int, op string) []string {
	out := make([]string, 0, len(ops)+1)
	out = append(out, ops[:at]...)
	out = append(out, op)
	return append(out, ops[at:]...)
}
